package xlog

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// globalLogger 全局 Logger 实例（并发安全）
var globalLogger atomic.Pointer[LoggerWithLevel]

// globalMu 保护 globalOnce 的 Do 与 ResetDefault 之间的竞争
var globalMu sync.Mutex

var globalOnce sync.Once

func defaultLogger() LoggerWithLevel {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalOnce.Do(func() {
		logger, _, err := New().Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "xlog: failed to build default logger: %v, using fallback\n", err)
			s := &shared{
				levels:    newLevelTable(LevelInfo, nil),
				cacheSize: defaultCategoryCacheSize,
			}
			var fallback LoggerWithLevel = newXLogger(s, slog.NewTextHandler(os.Stderr, nil))
			globalLogger.Store(&fallback)
			return
		}
		globalLogger.Store(&logger)
	})
	return *globalLogger.Load()
}

// Default 返回全局默认 Logger（stderr，Info 级别，text 格式），首次调用时创建。
//
// 适用于脚手架、小工具；服务端推荐显式持有 Logger。
func Default() LoggerWithLevel {
	if l := globalLogger.Load(); l != nil {
		return *l
	}
	return defaultLogger()
}

// SetDefault 替换全局默认 Logger，nil 被忽略
func SetDefault(logger LoggerWithLevel) {
	if logger == nil {
		return
	}
	globalLogger.Store(&logger)
}

// ResetDefault 丢弃当前全局 Logger，下次 Default 重新创建。主要用于测试。
func ResetDefault() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger.Store(nil)
	globalOnce = sync.Once{}
}
