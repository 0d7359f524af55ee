package xaop

import "context"

// active 返回启用状态下的配置快照，nil 引擎或全局关闭时返回 nil。
func (e *Engine) active() *Config {
	if e == nil {
		return nil
	}
	if cfg := e.cfg.Load(); cfg.Enabled {
		return cfg
	}
	return nil
}

// Before 记录 entering 事件，只解析 entering 级别。
func (e *Engine) Before(ctx context.Context, site *CallSite, inv *Invocation) {
	cfg := e.active()
	if cfg == nil {
		return
	}
	site, inv = siteOrZero(site), invocationOrZero(inv)
	e.logEntering(ctx, cfg, site, newCall(inv, categoryOf(site, inv)))
}

// AfterReturning 记录正常返回的 exited 事件。
func (e *Engine) AfterReturning(ctx context.Context, site *CallSite, inv *Invocation, ret any) {
	cfg := e.active()
	if cfg == nil {
		return
	}
	site, inv = siteOrZero(site), invocationOrZero(inv)
	e.logExited(ctx, cfg, site, newCall(inv, categoryOf(site, inv)), ret)
}

// AfterThrowing 记录 exited-abnormally 事件。
//
// 全局关闭、级别禁用、err 为 nil 或命中忽略列表时不输出，三个条件都在渲染前判断。
func (e *Engine) AfterThrowing(ctx context.Context, site *CallSite, inv *Invocation, err error) {
	cfg := e.active()
	if cfg == nil {
		return
	}
	site, inv = siteOrZero(site), invocationOrZero(inv)
	e.logExitedAbnormally(ctx, cfg, site, newCall(inv, categoryOf(site, inv)), err)
}
