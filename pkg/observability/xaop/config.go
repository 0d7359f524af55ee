package xaop

import (
	"fmt"
	"slices"
)

// Config 全局配置快照。
//
// 加载后视为只读；需要变更时构造新值并调用 [Engine.SetConfig] 整体替换。
// 引擎信任已加载的 Config，不做二次校验，校验由加载方调用 [Config.Validate] 完成。
type Config struct {
	// Enabled 全局开关。关闭后引擎不输出任何日志，也不计时。
	Enabled bool

	Entering         Event
	Exited           Event
	ExitedAbnormally Event
	Elapsed          Event

	// IgnoreErrors 全局忽略的错误，与调用点列表同时生效。
	IgnoreErrors []ErrorMatcher

	// Version 快照版本号，由加载方递增，仅用于观测。
	Version uint64
}

// DefaultConfig 返回默认配置：启用，entering/exited/elapsed 为 DEBUG，
// exited-abnormally 为 ERROR，使用默认消息模板。
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Entering:         Event{Level: LevelDebug, Message: DefaultEnteringMessage},
		Exited:           Event{Level: LevelDebug, Message: DefaultExitedMessage},
		ExitedAbnormally: Event{Level: LevelError, Message: DefaultExitedAbnormallyMessage},
		Elapsed:          Event{Level: LevelDebug, Message: DefaultElapsedMessage},
	}
}

// Event 返回指定事件的配置。
func (c *Config) Event(kind EventKind) Event {
	switch kind {
	case EventEntering:
		return c.Entering
	case EventExited:
		return c.Exited
	case EventExitedAbnormally:
		return c.ExitedAbnormally
	default:
		return c.Elapsed
	}
}

// Validate 检查每个事件都有非空模板和具体级别。
func (c *Config) Validate() error {
	for _, kind := range []EventKind{EventEntering, EventExited, EventExitedAbnormally, EventElapsed} {
		ev := c.Event(kind)
		if ev.Message == "" {
			return fmt.Errorf("%w: %s", ErrEmptyMessage, kind)
		}
		if !ev.Level.IsSpecified() {
			return fmt.Errorf("%w: %s", ErrUnspecifiedLevel, kind)
		}
	}
	return nil
}

// clone 复制切片字段，保证快照不与调用方共享底层数组。
func (c Config) clone() *Config {
	c.IgnoreErrors = slices.Clone(c.IgnoreErrors)
	return &c
}
