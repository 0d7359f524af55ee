// Package xlog 基于 log/slog 的分类日志库，作为 xaop 引擎的默认输出目标。
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：第一个配置错误之后的 Set 调用被跳过）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelInfo).
//		SetFormat("json").
//		SetCategoryLevel("github.com/acme/order", xlog.LevelDebug).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 分类
//
// [Logger.Category] 返回带 logger 属性的子 Logger，子 Logger 按分类缓存（LRU）。
// 分类级别按最长前缀匹配，前缀边界为 '.' 或 '/'：
// 为 "github.com/acme/order" 设置的级别同样作用于 "github.com/acme/order.Service"，
// 但不作用于 "github.com/acme/orders"。未命中任何前缀时使用根级别。
//
// # 日志级别
//
// LevelTrace(-8)、LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)，
// 与 slog 数值兼容，输出时 Trace 显示为 "TRACE"。级别可在运行时调整。
//
// # Trace 注入
//
// 默认启用 [EnrichHandler]：ctx 中存在有效的 OpenTelemetry span 时，
// 自动添加 trace_id 与 span_id。
//
// # 延迟求值
//
// [Lazy]、[LazyString] 只在日志真正输出时求值。
package xlog
