package xlog

import (
	"context"
	"log/slog"
)

// Logger 带 context 的结构化日志接口。
//
// 所有方法均可并发调用。ctx 为 nil 时按 context.Background() 处理。
type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...slog.Attr)
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// Log 以指定级别记录日志。
	Log(ctx context.Context, level Level, msg string, attrs ...slog.Attr)

	// Enabled 报告该 Logger 在 level 上是否会输出。
	// 调用方可据此跳过昂贵的消息构造。
	Enabled(ctx context.Context, level Level) bool

	// With 返回附加了固定属性的派生 Logger。
	With(attrs ...slog.Attr) Logger

	// Category 返回分类子 Logger，输出时带 logger=name 属性，
	// 级别按分类前缀表解析。name 为空时返回根分类。
	Category(name string) Logger
}

// Leveler 运行时级别控制。
type Leveler interface {
	// SetLevel 设置根级别。
	SetLevel(level Level)
	// GetLevel 返回根级别。
	GetLevel() Level
	// SetCategoryLevel 为分类前缀设置级别。
	SetCategoryLevel(category string, level Level)
	// ClearCategoryLevel 删除分类前缀上的级别。
	ClearCategoryLevel(category string)
	// EffectiveLevel 返回分类最终生效的级别。
	EffectiveLevel(category string) Level
}

// LoggerWithLevel 同时支持日志输出与级别控制。
type LoggerWithLevel interface {
	Logger
	Leveler
}
