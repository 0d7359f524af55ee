package xaop

import (
	"context"
	"runtime/debug"

	"github.com/omeyang/xaop/pkg/observability/xmetrics"
)

// Around 包装 fn，记录 entering、elapsed、exited / exited-abnormally 事件。
//
// 执行顺序：
//  1. 全局关闭时直接调用 fn 并原样返回，不记录任何日志，也不计时；
//  2. 记录 entering（级别启用时）；
//  3. 紧挨着调用 fn 之前开始计时，与 entering 是否输出无关；
//  4. 正常返回：先 elapsed 后 exited；
//  5. 返回错误：先 elapsed 后 exited-abnormally（级别启用且未被忽略时）。
//
// fn 的返回值和错误总是原样返回给调用方。fn 发生 panic 时，记录 elapsed 和
// exited-abnormally（错误为 [*PanicError]）后以原始值重新 panic；
// fn 调用 runtime.Goexit 时只记录 elapsed。
// Observer 的 panic 与 Sink 一样计入 [Engine.Faults]，不影响调用结果。
// 调用方传入 nil ctx 时 fn 收到的也是 nil。
// e 为 nil 时等价于直接调用 fn。
func Around[T any](ctx context.Context, e *Engine, site *CallSite, inv *Invocation, fn func(context.Context) (T, error)) (T, error) {
	cfg := e.active()
	if cfg == nil {
		return fn(ctx)
	}

	site, inv = siteOrZero(site), invocationOrZero(inv)
	c := newCall(inv, categoryOf(site, inv))

	fnCtx := ctx
	ctx, span := e.startSpan(ctx, xmetrics.SpanOptions{
		Component: c.category,
		Operation: inv.Signature.Name,
		Kind:      xmetrics.KindInternal,
	})
	if fnCtx != nil {
		fnCtx = ctx
	}

	e.logEntering(ctx, cfg, site, c)

	completed := false
	start := e.now()
	defer func() {
		if completed {
			return
		}
		rec := recover()
		elapsed := e.now().Sub(start)
		if rec == nil {
			// runtime.Goexit：没有返回值或错误可描述，也无需重新 panic。
			e.endSpan(span, xmetrics.Result{Status: xmetrics.StatusError})
			e.logElapsed(ctx, cfg, site, c, elapsed)
			return
		}
		perr := &PanicError{Value: rec, Stack: debug.Stack()}
		e.endSpan(span, xmetrics.Result{Err: perr})
		e.logElapsed(ctx, cfg, site, c, elapsed)
		e.logExitedAbnormally(ctx, cfg, site, c, perr)
		panic(rec)
	}()

	result, err := fn(fnCtx)
	completed = true
	elapsed := e.now().Sub(start)

	e.endSpan(span, xmetrics.Result{Err: err})
	e.logElapsed(ctx, cfg, site, c, elapsed)
	if err != nil {
		e.logExitedAbnormally(ctx, cfg, site, c, err)
	} else {
		e.logExited(ctx, cfg, site, c, result)
	}
	return result, err
}

// AroundErr 是 [Around] 针对只返回 error 的函数的便捷形式。
func AroundErr(ctx context.Context, e *Engine, site *CallSite, inv *Invocation, fn func(context.Context) error) error {
	_, err := Around(ctx, e, site, inv, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
