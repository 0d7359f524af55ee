package xaop

import (
	"context"
	"log/slog"

	"github.com/omeyang/xaop/pkg/observability/xlog"
)

// Sink 日志最终输出目标。
//
// 引擎在做任何渲染之前都会先调用 Enabled；只有返回 true 才会构造占位符并调用 Emit。
// category 为日志分类（调用点 DeclaringType 或签名中的声明类型）。
// Emit 的 err 仅在 exited-abnormally 事件且调用点未设置 NoStack 时非 nil。
// 实现必须并发安全。
type Sink interface {
	Enabled(ctx context.Context, category string, level Level) bool
	Emit(ctx context.Context, category string, level Level, msg string, err error)
}

// logSink 基于 xlog 的 Sink 实现，按分类派生子 logger。
type logSink struct {
	logger xlog.Logger
}

// NewLogSink 返回输出到 xlog 的 Sink。logger 为 nil 时使用 [xlog.Default]。
func NewLogSink(logger xlog.Logger) Sink {
	if logger == nil {
		logger = xlog.Default()
	}
	return &logSink{logger: logger}
}

// Enabled 实现 Sink。
func (s *logSink) Enabled(ctx context.Context, category string, level Level) bool {
	return s.logger.Category(category).Enabled(ctx, toXlogLevel(level))
}

// Emit 实现 Sink。
func (s *logSink) Emit(ctx context.Context, category string, level Level, msg string, err error) {
	logger := s.logger.Category(category)
	if err == nil {
		logger.Log(ctx, toXlogLevel(level), msg)
		return
	}

	attrs := make([]slog.Attr, 0, 2)
	attrs = append(attrs, xlog.Err(err))
	if pe, ok := err.(*PanicError); ok && len(pe.Stack) > 0 {
		stack := pe.Stack
		attrs = append(attrs, xlog.LazyString(xlog.KeyStack, func() string { return string(stack) }))
	}
	logger.Log(ctx, toXlogLevel(level), msg, attrs...)
}

func toXlogLevel(level Level) xlog.Level {
	switch level {
	case LevelTrace:
		return xlog.LevelTrace
	case LevelDebug:
		return xlog.LevelDebug
	case LevelWarn:
		return xlog.LevelWarn
	case LevelError:
		return xlog.LevelError
	default:
		return xlog.LevelInfo
	}
}
