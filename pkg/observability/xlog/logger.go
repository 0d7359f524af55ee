package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// 编译时接口检查
var (
	_ Logger          = (*xlogger)(nil)
	_ LoggerWithLevel = (*xlogger)(nil)
)

// shared 同一 Build 产生的所有派生 logger 共享的状态。
type shared struct {
	levels         *levelTable
	onError        func(error)
	errorCount     atomic.Uint64
	inErrorHandler atomic.Bool
	addSource      bool
	cacheSize      int
}

// xlogger Logger 接口的实现
type xlogger struct {
	*shared

	// base 不带分类属性的 handler，Category 从它派生
	base     slog.Handler
	handler  slog.Handler
	category string
	children *lru.Cache[string, *xlogger]
}

func newXLogger(s *shared, base slog.Handler) *xlogger {
	return &xlogger{
		shared:   s,
		base:     base,
		handler:  base,
		children: newChildCache(s.cacheSize),
	}
}

func newChildCache(size int) *lru.Cache[string, *xlogger] {
	// size 已由 Builder 校验为正数，lru.New 只在 size<=0 时失败
	c, err := lru.New[string, *xlogger](size)
	if err != nil {
		c, _ = lru.New[string, *xlogger](defaultCategoryCacheSize)
	}
	return c
}

// Enabled 同时检查分类级别与底层 handler
func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if level < l.levels.effective(l.category) {
		return false
	}
	return l.handler.Enabled(orBackground(ctx), slog.Level(level))
}

// logWithSkip 通用日志方法
// extraSkip: 额外需要跳过的栈帧数
//
//go:noinline
func (l *xlogger) logWithSkip(ctx context.Context, level Level, msg string, attrs []slog.Attr, extraSkip int) {
	ctx = orBackground(ctx)
	if !l.Enabled(ctx, level) {
		return
	}

	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		// Callers(0) → logWithSkip(1) → 直接调用方(2) → 业务代码(3)
		runtime.Callers(3+extraSkip, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pc)
	r.AddAttrs(attrs...)

	if err := l.handler.Handle(ctx, r); err != nil {
		l.handleError(err)
	}
}

// handleError 处理 Handler.Handle 失败。
// onError 内再次失败不会递归进入回调，回调 panic 被隔离。
func (l *xlogger) handleError(err error) {
	l.errorCount.Add(1)
	if l.onError == nil {
		return
	}
	if l.inErrorHandler.CompareAndSwap(false, true) {
		defer l.inErrorHandler.Store(false)
		l.safeOnError(err)
	}
}

func (l *xlogger) safeOnError(err error) {
	defer func() {
		if r := recover(); r != nil {
			l.errorCount.Add(1)
		}
	}()
	l.onError(err)
}

// Trace 记录 Trace 级别日志
//
//go:noinline
func (l *xlogger) Trace(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, LevelTrace, msg, attrs, 0)
}

// Debug 记录 Debug 级别日志
//
//go:noinline
func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, LevelDebug, msg, attrs, 0)
}

// Info 记录 Info 级别日志
//
//go:noinline
func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, LevelInfo, msg, attrs, 0)
}

// Warn 记录 Warn 级别日志
//
//go:noinline
func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, LevelWarn, msg, attrs, 0)
}

// Error 记录 Error 级别日志
//
//go:noinline
func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, LevelError, msg, attrs, 0)
}

// Log 以指定级别记录日志
//
//go:noinline
func (l *xlogger) Log(ctx context.Context, level Level, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, level, msg, attrs, 0)
}

// With 返回带附加属性的 Logger
func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &xlogger{
		shared:   l.shared,
		base:     l.base.WithAttrs(attrs),
		handler:  l.handler.WithAttrs(attrs),
		category: l.category,
		children: newChildCache(l.cacheSize),
	}
}

// Category 返回分类子 Logger，同名分类复用缓存实例
func (l *xlogger) Category(name string) Logger {
	if name == l.category {
		return l
	}
	if name == "" {
		return &xlogger{shared: l.shared, base: l.base, handler: l.base, children: l.children}
	}
	if child, ok := l.children.Get(name); ok {
		return child
	}
	child := &xlogger{
		shared:   l.shared,
		base:     l.base,
		handler:  l.base.WithAttrs([]slog.Attr{slog.String(KeyLogger, name)}),
		category: name,
		children: l.children,
	}
	l.children.Add(name, child)
	return child
}

// SetLevel 设置根级别
func (l *xlogger) SetLevel(level Level) {
	l.levels.set("", level)
}

// GetLevel 返回根级别
func (l *xlogger) GetLevel() Level {
	return Level(l.levels.root.Level())
}

// SetCategoryLevel 为分类前缀设置级别，category 为空时等同 SetLevel
func (l *xlogger) SetCategoryLevel(category string, level Level) {
	l.levels.set(category, level)
}

// ClearCategoryLevel 删除分类前缀上的级别
func (l *xlogger) ClearCategoryLevel(category string) {
	l.levels.clear(category)
}

// EffectiveLevel 返回分类最终生效的级别
func (l *xlogger) EffectiveLevel(category string) Level {
	return l.levels.effective(category)
}

// ErrorCount 返回 handler 写入失败的累计次数
func (l *xlogger) ErrorCount() uint64 {
	return l.errorCount.Load()
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
