package xaop

import (
	"fmt"
	"strings"
)

// Level 日志级别。
//
// 零值 [LevelUnspecified] 只用于调用点配置，表示“沿用全局级别”，
// 不会出现在全局配置中，也不会传递给 [Sink]。
type Level int8

// 级别常量，按严重程度递增。
const (
	LevelUnspecified Level = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// String 返回级别的大写名称。
func (l Level) String() string {
	switch l {
	case LevelUnspecified:
		return "UNSPECIFIED"
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", int8(l))
	}
}

// IsSpecified 报告级别是否为具体级别。
func (l Level) IsSpecified() bool {
	return l >= LevelTrace && l <= LevelError
}

// MarshalText 实现 encoding.TextMarshaler 接口。
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler 接口。
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := ParseLevel(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel 解析级别字符串（大小写不敏感，自动 TrimSpace）。
//
// 空字符串、"default"、"unspecified" 解析为 [LevelUnspecified]。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "unspecified":
		return LevelUnspecified, nil
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelUnspecified, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}
