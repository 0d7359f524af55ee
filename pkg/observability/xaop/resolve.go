package xaop

// ResolveLevel 调用点级别为 [LevelUnspecified] 时返回全局级别，否则返回调用点级别。
func ResolveLevel(site, global Level) Level {
	if site == LevelUnspecified {
		return global
	}
	return site
}

// ResolveMessage 调用点模板为空时返回全局模板，否则返回调用点模板。
func ResolveMessage(site, global string) string {
	if site == "" {
		return global
	}
	return site
}

// resolved 某个事件最终生效的级别与模板。
type resolved struct {
	level   Level
	message string
}

func resolve(kind EventKind, site *CallSite, cfg *Config) resolved {
	s := site.event(kind)
	g := cfg.Event(kind)
	return resolved{
		level:   ResolveLevel(s.Level, g.Level),
		message: ResolveMessage(s.Message, g.Message),
	}
}
