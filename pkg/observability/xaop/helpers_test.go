package xaop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// entry 一条被 recordingSink 记录的日志。
type entry struct {
	category string
	level    Level
	msg      string
	err      error
}

// recordingSink 记录 Emit 调用，minLevel 以下视为禁用。
type recordingSink struct {
	mu       sync.Mutex
	minLevel Level
	entries  []entry
	enabled  int
}

func newRecordingSink(minLevel Level) *recordingSink {
	return &recordingSink{minLevel: minLevel}
}

func (s *recordingSink) Enabled(_ context.Context, _ string, level Level) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled++
	return level >= s.minLevel
}

func (s *recordingSink) Emit(_ context.Context, category string, level Level, msg string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{category: category, level: level, msg: msg, err: err})
}

func (s *recordingSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.msg
	}
	return out
}

func (s *recordingSink) all() []entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entry(nil), s.entries...)
}

// countingStringer 统计 String 被调用的次数。
type countingStringer struct {
	mu    sync.Mutex
	calls int
	value string
}

func (c *countingStringer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.value
}

func (c *countingStringer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// stepClock 每次调用前进 step，Around 测得的耗时恰好为 step。
func stepClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}

// newTestEngine 使用 recordingSink 与确定性时钟创建引擎。
func newTestEngine(t testing.TB, sink Sink, opts ...Option) *Engine {
	t.Helper()
	e, err := New(sink, append([]Option{WithClock(stepClock(1500 * time.Millisecond))}, opts...)...)
	require.NoError(t, err)
	return e
}

// fooInvocation void foo() 的调用描述。
func fooInvocation() *Invocation {
	return &Invocation{Signature: Signature{DeclaringType: "com.example.Demo", Name: "foo"}}
}
