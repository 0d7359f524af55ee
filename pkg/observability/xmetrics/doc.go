// Package xmetrics 为被拦截的调用提供 span 与调用指标。
//
// 业务代码只依赖 Observer/Span 接口，默认实现基于 OpenTelemetry。
// xaop.Engine 通过 xaop.WithObserver 接入后，每次 Around 调用产生一个 span，
// 日志中的 trace_id/span_id 与该 span 一致。
//
//	obs, err := xmetrics.NewOTelObserver(
//		xmetrics.WithMeterProvider(mp),
//		xmetrics.WithTracerProvider(tp),
//	)
//	if err != nil {
//		return err
//	}
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "github.com/acme/order.Service",
//		Operation: "Create",
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// # 指标
//
//   - xaop.call.total：调用次数
//   - xaop.call.duration：调用耗时（秒）
//
// 属性：category / method / status。
package xmetrics
