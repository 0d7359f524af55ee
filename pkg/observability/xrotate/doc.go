// Package xrotate 基于 lumberjack 的按大小日志轮转，作为 xlog 的文件输出目标。
//
//	r, err := xrotate.NewLumberjack("/var/log/app/xaop.log",
//		xrotate.WithMaxSize(100),
//		xrotate.WithMaxBackups(5),
//	)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
// 父目录不存在时自动创建。Close 之后 Write 与 Rotate 返回 [ErrClosed]。
package xrotate
