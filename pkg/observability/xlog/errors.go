package xlog

import "errors"

var (
	// ErrNilHandler 表示 NewEnrichHandler 的 base handler 为 nil。
	ErrNilHandler = errors.New("xlog: base handler is nil")

	// ErrUnknownLevel 表示无法识别的级别字符串。
	ErrUnknownLevel = errors.New("xlog: unknown level")

	// ErrUnknownFormat 表示无法识别的输出格式。
	ErrUnknownFormat = errors.New("xlog: unknown format")

	// ErrInvalidCacheSize 表示分类缓存大小非法。
	ErrInvalidCacheSize = errors.New("xlog: category cache size must be positive")
)
