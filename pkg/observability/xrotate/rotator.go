package xrotate

import "io"

var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器，所有方法并发安全。
type Rotator interface {
	io.WriteCloser

	// Rotate 手动触发轮转：当前文件改名为备份并打开新文件。
	Rotate() error
}
