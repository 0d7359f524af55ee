package xaop

import "errors"

// 引擎构造与配置校验相关错误。
var (
	// ErrNilSink 表示未提供日志输出目标。
	ErrNilSink = errors.New("xaop: nil sink")

	// ErrNilEngine 表示传入了 nil 的 Engine。
	ErrNilEngine = errors.New("xaop: nil engine")

	// ErrEmptyMessage 表示全局配置中存在空的消息模板。
	ErrEmptyMessage = errors.New("xaop: empty message template")

	// ErrUnspecifiedLevel 表示全局配置中存在未指定的级别。
	ErrUnspecifiedLevel = errors.New("xaop: unspecified level")

	// ErrUnknownLevel 表示无法识别的级别字符串。
	ErrUnknownLevel = errors.New("xaop: unknown level")

	// ErrUnknownErrorName 表示配置中引用了未注册的错误名称。
	ErrUnknownErrorName = errors.New("xaop: unknown error name")

	// ErrLoadConfig 表示从 xconf 读取配置失败。
	ErrLoadConfig = errors.New("xaop: failed to load config")
)

// ErrInternalFault 表示日志过程中发生的内部错误（渲染或 Sink panic）。
// 这类错误只通过 WithOnError 回调报告，不会影响被拦截调用的结果。
var ErrInternalFault = errors.New("xaop: internal logging fault")
