package xmetrics

import (
	"context"
	"strconv"
)

// Kind 观测跨度类型。
type Kind int

const (
	// KindInternal 进程内调用，拦截的方法默认使用该类型。
	KindInternal Kind = iota
	// KindServer 服务端入口。
	KindServer
	// KindClient 对外调用。
	KindClient
)

// String 返回 Kind 的可读名称。
func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "Internal"
	case KindServer:
		return "Server"
	case KindClient:
		return "Client"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Status 调用结果状态。
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Attr 观测属性。
type Attr struct {
	Key   string
	Value any
}

// SpanOptions 观测跨度的创建参数。
type SpanOptions struct {
	// Component 调用所属分类，通常是声明类型。
	Component string
	// Operation 方法名。
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Result 观测跨度结束时的结果。
type Result struct {
	// Status 为空时根据 Err 推导。
	Status Status
	Err    error
	Attrs  []Attr
}

// Span 一次观测跨度。
type Span interface {
	// End 结束观测并记录结果，多次调用只生效一次。
	End(result Result)
}

// Observer 观测接口。
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 空实现。
type NoopObserver struct{}

// Start 返回 ctx 和空跨度，nil ctx 替换为 context.Background()。
func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 空跨度。
type NoopSpan struct{}

// End 空实现。
func (NoopSpan) End(Result) {}

// Start 使用 observer 开始观测。
//
// 总是返回非 nil 的 ctx 与 Span：observer 为 nil 或返回 nil 值时退化为 [NoopSpan]。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	retCtx, span := observer.Start(ctx, opts)
	if retCtx == nil {
		retCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return retCtx, span
}
