package xlog

import "log/slog"

// lazyValue 实现 slog.LogValuer，handler 输出时才调用 fn。
type lazyValue struct {
	fn func() any
}

// LogValue 实现 slog.LogValuer 接口。
func (l lazyValue) LogValue() slog.Value {
	return slog.AnyValue(l.fn())
}

// Lazy 返回延迟求值的属性。级别禁用时 fn 不会被调用。
//
//	logger.Debug(ctx, "request",
//		xlog.Lazy("body", func() any { return expensiveSerialize(req) }))
func Lazy(key string, fn func() any) slog.Attr {
	if fn == nil {
		return slog.Any(key, nil)
	}
	return slog.Any(key, lazyValue{fn: fn})
}

type lazyStringValue struct {
	fn func() string
}

// LogValue 实现 slog.LogValuer 接口。
func (l lazyStringValue) LogValue() slog.Value {
	return slog.StringValue(l.fn())
}

// LazyString 是字符串专用的 [Lazy]。
func LazyString(key string, fn func() string) slog.Attr {
	if fn == nil {
		return slog.String(key, "")
	}
	return slog.Any(key, lazyStringValue{fn: fn})
}
