package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/omeyang/xaop/pkg/observability/xrotate"
)

// defaultCategoryCacheSize 每个 Logger 缓存的分类子 Logger 数量
const defaultCategoryCacheSize = 1024

// ReplaceAttrFunc 属性替换函数，返回空 Key 的 Attr 会移除该属性。
// 用于字段重命名、脱敏、过滤。
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// Builder 日志配置构建器
type Builder struct {
	output         io.Writer
	level          Level
	categoryLevels map[string]Level
	cacheSize      int
	format         string
	addSource      bool
	enableEnrich   bool
	replaceAttr    ReplaceAttrFunc
	rotator        xrotate.Rotator
	onError        func(error)
	err            error
}

// New 创建配置构建器，默认 stderr、Info 级别、text 格式、启用 enrich。
func New() *Builder {
	return &Builder{
		output:         os.Stderr,
		level:          LevelInfo,
		categoryLevels: map[string]Level{},
		cacheSize:      defaultCategoryCacheSize,
		format:         "text",
		enableEnrich:   true,
	}
}

// SetOutput 设置日志输出目标，nil 被忽略
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w != nil {
		b.output = w
	}
	return b
}

// SetLevel 设置根级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.level = level
	return b
}

// SetLevelString 通过字符串设置根级别
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetCategoryLevel 为分类前缀设置初始级别，category 为空时等同 SetLevel
func (b *Builder) SetCategoryLevel(category string, level Level) *Builder {
	if category == "" {
		return b.SetLevel(level)
	}
	b.categoryLevels[category] = level
	return b
}

// SetCategoryCacheSize 设置分类子 Logger 缓存容量
func (b *Builder) SetCategoryCacheSize(size int) *Builder {
	if b.err != nil {
		return b
	}
	if size <= 0 {
		b.err = fmt.Errorf("%w: %d", ErrInvalidCacheSize, size)
		return b
	}
	b.cacheSize = size
	return b
}

// SetFormat 设置输出格式：text 或 json，空值视为 text
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetEnrich 是否从 context 注入 trace_id/span_id，默认启用
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.enableEnrich = enable
	return b
}

// SetRotation 输出到按大小轮转的文件
func (b *Builder) SetRotation(filename string, opts ...xrotate.Option) *Builder {
	if b.err != nil {
		return b
	}
	rotator, err := xrotate.NewLumberjack(filename, opts...)
	if err != nil {
		b.err = err
		return b
	}
	b.rotator = rotator
	b.output = rotator
	return b
}

// SetOnError 设置 Handler.Handle 失败时的回调。
// 回调在日志调用方的 goroutine 同步执行，应保持轻量。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// SetReplaceAttr 设置属性替换函数
//
//	logger, _, _ := xlog.New().
//		SetReplaceAttr(func(groups []string, a slog.Attr) slog.Attr {
//			if a.Key == "password" {
//				return slog.String(a.Key, "***")
//			}
//			return a
//		}).
//		Build()
func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	b.replaceAttr = fn
	return b
}

// Build 构建 Logger 实例
//
// 返回值：
//   - LoggerWithLevel: 日志实例，同时支持动态级别控制
//   - func() error: 清理函数，关闭轮转文件，可重复调用
//   - error: 配置错误
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	// handler 自身放行所有级别，过滤交给 levelTable
	opts := &slog.HandlerOptions{
		Level:       slog.Level(LevelTrace),
		AddSource:   b.addSource,
		ReplaceAttr: b.composeReplaceAttr(),
	}

	var handler slog.Handler
	switch b.format {
	case "json":
		handler = slog.NewJSONHandler(b.output, opts)
	default:
		handler = slog.NewTextHandler(b.output, opts)
	}

	if b.enableEnrich {
		enriched, err := NewEnrichHandler(handler)
		if err != nil {
			return nil, nil, err
		}
		handler = enriched
	}

	s := &shared{
		levels:    newLevelTable(b.level, b.categoryLevels),
		onError:   b.onError,
		addSource: b.addSource,
		cacheSize: b.cacheSize,
	}
	return newXLogger(s, handler), b.createCleanup(), nil
}

func (b *Builder) composeReplaceAttr() func([]string, slog.Attr) slog.Attr {
	user := b.replaceAttr
	if user == nil {
		return replaceLevelName
	}
	return func(groups []string, a slog.Attr) slog.Attr {
		return user(groups, replaceLevelName(groups, a))
	}
}

// createCleanup 创建清理函数
func (b *Builder) createCleanup() func() error {
	var once sync.Once
	rotator := b.rotator

	return func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}
}
