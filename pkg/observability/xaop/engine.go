package xaop

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/omeyang/xaop/pkg/observability/xmetrics"
)

// defaultCategory 调用点和签名都没有声明类型时使用的分类。
const defaultCategory = "xaop"

// Engine 拦截日志引擎。
//
// 跨调用共享的只有配置快照（原子替换）、Sink 和内部错误计数，
// 每次调用的上下文和 Registry 由执行该调用的 goroutine 独占。Engine 并发安全。
type Engine struct {
	cfg      atomic.Pointer[Config]
	sink     Sink
	observer xmetrics.Observer
	now      func() time.Time
	onError  func(error)
	faults   atomic.Uint64
}

// Option 引擎配置选项。
type Option func(*Engine)

// WithConfig 设置初始配置快照，默认为 [DefaultConfig]。
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg.Store(cfg.clone())
	}
}

// WithObserver 为 [Around] 包装的调用开启 span 和调用指标。
func WithObserver(obs xmetrics.Observer) Option {
	return func(e *Engine) {
		e.observer = obs
	}
}

// WithClock 替换计时时钟，默认 time.Now（带单调时钟读数）。
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithOnError 设置内部错误回调。
//
// 渲染或 Sink 发生 panic 时调用，错误包装 [ErrInternalFault]。
// 回调在热路径同步执行，应保持轻量；回调自身的 panic 会被吞掉并计数。
func WithOnError(fn func(error)) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// New 创建引擎。
func New(sink Sink, opts ...Option) (*Engine, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	e := &Engine{
		sink: sink,
		now:  time.Now,
	}
	e.cfg.Store(DefaultConfig().clone())
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Config 返回当前配置快照的副本，修改副本不影响引擎。
func (e *Engine) Config() Config {
	return *e.cfg.Load().clone()
}

// SetConfig 原子替换配置快照，进行中的调用继续使用旧快照。
func (e *Engine) SetConfig(cfg Config) {
	e.cfg.Store(cfg.clone())
}

// Faults 返回累计的内部错误次数。
func (e *Engine) Faults() uint64 {
	return e.faults.Load()
}

func categoryOf(site *CallSite, inv *Invocation) string {
	if site.DeclaringType != "" {
		return site.DeclaringType
	}
	if inv.Signature.DeclaringType != "" {
		return inv.Signature.DeclaringType
	}
	return defaultCategory
}

// enabled 询问 Sink 级别是否启用，Sink panic 视为未启用。
func (e *Engine) enabled(ctx context.Context, category string, level Level) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			e.fault(rec)
		}
	}()
	return e.sink.Enabled(ctx, category, level)
}

// emit 注册占位符、渲染并输出；任何 panic 都在此隔离。
func (e *Engine) emit(ctx context.Context, c *call, r resolved, register func(), err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e.fault(rec)
		}
	}()
	register()
	msg := Render(r.message, c.registry())
	e.sink.Emit(ctx, c.category, r.level, msg, err)
}

// startSpan 开始观测，Observer panic 时退化为 NoopSpan。
func (e *Engine) startSpan(ctx context.Context, opts xmetrics.SpanOptions) (spanCtx context.Context, span xmetrics.Span) {
	defer func() {
		if rec := recover(); rec != nil {
			e.fault(rec)
			if ctx == nil {
				ctx = context.Background()
			}
			spanCtx, span = ctx, xmetrics.NoopSpan{}
		}
	}()
	return xmetrics.Start(ctx, e.observer, opts)
}

func (e *Engine) endSpan(span xmetrics.Span, result xmetrics.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			e.fault(rec)
		}
	}()
	span.End(result)
}

func (e *Engine) fault(rec any) {
	e.faults.Add(1)
	if e.onError == nil {
		return
	}
	err := fmt.Errorf("%w: %v", ErrInternalFault, rec)
	defer func() {
		if recover() != nil {
			e.faults.Add(1)
		}
	}()
	e.onError(err)
}

// logEntering 记录 entering 事件。
func (e *Engine) logEntering(ctx context.Context, cfg *Config, site *CallSite, c *call) {
	r := resolve(EventEntering, site, cfg)
	if !e.enabled(ctx, c.category, r.level) {
		return
	}
	e.emit(ctx, c, r, c.registerJoinPoint, nil)
}

// logExited 记录 exited 事件。
func (e *Engine) logExited(ctx context.Context, cfg *Config, site *CallSite, c *call, ret any) {
	r := resolve(EventExited, site, cfg)
	if !e.enabled(ctx, c.category, r.level) {
		return
	}
	e.emit(ctx, c, r, func() { c.registerReturnValue(ret) }, nil)
}

// logExitedAbnormally 记录 exited-abnormally 事件，级别禁用或错误被忽略时跳过。
func (e *Engine) logExitedAbnormally(ctx context.Context, cfg *Config, site *CallSite, c *call, err error) {
	r := resolve(EventExitedAbnormally, site, cfg)
	if !e.enabled(ctx, c.category, r.level) || IsIgnored(err, site.IgnoreErrors, cfg.IgnoreErrors) {
		return
	}
	attached := err
	if site.NoStack {
		attached = nil
	}
	e.emit(ctx, c, r, func() { c.registerException(err) }, attached)
}

// logElapsed 记录 elapsed 事件。
func (e *Engine) logElapsed(ctx context.Context, cfg *Config, site *CallSite, c *call, elapsed time.Duration) {
	r := resolve(EventElapsed, site, cfg)
	if !e.enabled(ctx, c.category, r.level) {
		return
	}
	e.emit(ctx, c, r, func() { c.registerElapsed(elapsed) }, nil)
}
