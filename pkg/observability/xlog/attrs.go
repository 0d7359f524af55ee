package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key。
const (
	// KeyError 错误字段。
	KeyError = "error"
	// KeyStack 堆栈字段。
	KeyStack = "stack"
	// KeyLogger 分类字段。
	KeyLogger = "logger"
	// KeyDuration 耗时字段。
	KeyDuration = "duration"
	// KeyTraceID OpenTelemetry trace id。
	KeyTraceID = "trace_id"
	// KeySpanID OpenTelemetry span id。
	KeySpanID = "span_id"
)

// Err 创建错误属性，err 为 nil 时返回会被 slog 忽略的空属性。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建人类可读的耗时属性（如 "1.5s"）。
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}
