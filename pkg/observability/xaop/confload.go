package xaop

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"sync"

	"github.com/omeyang/xaop/pkg/config/xconf"
)

// fileEvent 配置文件中单个事件的结构。
type fileEvent struct {
	Level   string `koanf:"level"`
	Message string `koanf:"message"`
}

// fileConfig 配置文件结构。
//
//	xaop:
//	  enabled: true
//	  entering:
//	    level: debug
//	    message: "Entering {method} with {parameters}"
//	  exited-abnormally:
//	    level: warn
//	  ignore-errors:
//	    - context.Canceled
type fileConfig struct {
	Enabled          *bool     `koanf:"enabled"`
	Entering         fileEvent `koanf:"entering"`
	Exited           fileEvent `koanf:"exited"`
	ExitedAbnormally fileEvent `koanf:"exited-abnormally"`
	Elapsed          fileEvent `koanf:"elapsed"`
	IgnoreErrors     []string  `koanf:"ignore-errors"`
}

// LoadConfig 从 c 的 path 节点读取配置，缺失的键取 [DefaultConfig] 中的值。
//
// 级别写 "default" 或留空表示沿用默认级别。ignore-errors 中的名称
// 通过 [RegisterErrorName] 注册表解析。返回的配置已通过 [Config.Validate]，
// Version 取自 c.Version()。
func LoadConfig(c xconf.Config, path string) (Config, error) {
	if c == nil {
		return Config{}, fmt.Errorf("%w: nil xconf.Config", ErrLoadConfig)
	}
	var fc fileConfig
	if err := c.Unmarshal(path, &fc); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := DefaultConfig()
	if fc.Enabled != nil {
		cfg.Enabled = *fc.Enabled
	}

	events := []struct {
		kind EventKind
		src  fileEvent
		dst  *Event
	}{
		{EventEntering, fc.Entering, &cfg.Entering},
		{EventExited, fc.Exited, &cfg.Exited},
		{EventExitedAbnormally, fc.ExitedAbnormally, &cfg.ExitedAbnormally},
		{EventElapsed, fc.Elapsed, &cfg.Elapsed},
	}
	for _, ev := range events {
		level, err := ParseLevel(ev.src.Level)
		if err != nil {
			return Config{}, fmt.Errorf("%s.level: %w", ev.kind, err)
		}
		if level.IsSpecified() {
			ev.dst.Level = level
		}
		if ev.src.Message != "" {
			ev.dst.Message = ev.src.Message
		}
	}

	for _, name := range fc.IgnoreErrors {
		m, ok := LookupErrorName(name)
		if !ok {
			return Config{}, fmt.Errorf("%w: %q", ErrUnknownErrorName, name)
		}
		cfg.IgnoreErrors = append(cfg.IgnoreErrors, m)
	}

	cfg.Version = c.Version()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WatchConfig 监视 c 对应的文件，变更后重新 [LoadConfig] 并替换 e 的配置快照。
//
// 重载或校验失败时保留旧快照，错误交给 onErr（可为 nil）。
// 返回的 Watcher 已在后台运行，调用 Stop 结束监视。
func WatchConfig(e *Engine, c xconf.Config, path string, onErr func(error), opts ...xconf.WatchOption) (*xconf.Watcher, error) {
	if e == nil {
		return nil, ErrNilEngine
	}
	report := func(err error) {
		if onErr != nil {
			onErr(err)
		}
	}
	w, err := xconf.Watch(c, func(cfg xconf.Config, err error) {
		if err != nil {
			report(err)
			return
		}
		next, err := LoadConfig(cfg, path)
		if err != nil {
			report(err)
			return
		}
		e.SetConfig(next)
	}, opts...)
	if err != nil {
		return nil, err
	}
	w.StartAsync()
	return w, nil
}

var errorNames = struct {
	sync.RWMutex
	m map[string]ErrorMatcher
}{
	m: map[string]ErrorMatcher{
		"context.Canceled":         ErrorIs(context.Canceled),
		"context.DeadlineExceeded": ErrorIs(context.DeadlineExceeded),
		"io.EOF":                   ErrorIs(io.EOF),
		"io.ErrUnexpectedEOF":      ErrorIs(io.ErrUnexpectedEOF),
		"os.ErrNotExist":           ErrorIs(os.ErrNotExist),
		"os.ErrPermission":         ErrorIs(os.ErrPermission),
		"net.Error":                ErrorType[net.Error](),
		"*fs.PathError":            ErrorType[*fs.PathError](),
		"*net.OpError":             ErrorType[*net.OpError](),
	},
}

// RegisterErrorName 注册可在配置文件 ignore-errors 中引用的错误名称，
// 同名覆盖。name 为空或 m 为 nil 时忽略。
//
//	xaop.RegisterErrorName("order.ErrNotFound", xaop.ErrorIs(order.ErrNotFound))
func RegisterErrorName(name string, m ErrorMatcher) {
	if name == "" || isNilMatcher(m) {
		return
	}
	errorNames.Lock()
	defer errorNames.Unlock()
	errorNames.m[name] = m
}

// LookupErrorName 返回已注册的错误匹配器。
func LookupErrorName(name string) (ErrorMatcher, bool) {
	errorNames.RLock()
	defer errorNames.RUnlock()
	m, ok := errorNames.m[name]
	return m, ok
}
