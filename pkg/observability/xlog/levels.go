package xlog

import (
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
)

// levelTable 根级别加分类前缀覆盖表。
// 读路径无锁：覆盖表以写时复制方式整体替换。
type levelTable struct {
	root      slog.LevelVar
	mu        sync.Mutex
	overrides atomic.Pointer[map[string]Level]
}

func newLevelTable(root Level, overrides map[string]Level) *levelTable {
	t := &levelTable{}
	t.root.Set(slog.Level(root))
	m := maps.Clone(overrides)
	if m == nil {
		m = map[string]Level{}
	}
	t.overrides.Store(&m)
	return t
}

func (t *levelTable) set(category string, level Level) {
	if category == "" {
		t.root.Set(slog.Level(level))
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	m := maps.Clone(*t.overrides.Load())
	m[category] = level
	t.overrides.Store(&m)
}

func (t *levelTable) clear(category string) {
	if category == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := *t.overrides.Load()
	if _, ok := cur[category]; !ok {
		return
	}
	m := maps.Clone(cur)
	delete(m, category)
	t.overrides.Store(&m)
}

// effective 最长前缀匹配，未命中返回根级别。
func (t *levelTable) effective(category string) Level {
	level := Level(t.root.Level())
	if category == "" {
		return level
	}
	best := -1
	for prefix, l := range *t.overrides.Load() {
		if len(prefix) > best && matchCategory(category, prefix) {
			level, best = l, len(prefix)
		}
	}
	return level
}

// matchCategory 报告 prefix 是否在 '.' 或 '/' 边界上覆盖 category。
func matchCategory(category, prefix string) bool {
	if len(category) < len(prefix) || category[:len(prefix)] != prefix {
		return false
	}
	if len(category) == len(prefix) {
		return true
	}
	switch category[len(prefix)] {
	case '.', '/':
		return true
	}
	return false
}
