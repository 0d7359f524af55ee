// Package xaop 提供调用拦截的模板化日志引擎。
//
// 给定一个调用边界（进入/退出）、可选的错误以及配置（全局默认值 + 调用点覆盖），
// 引擎决定是否记录日志、使用何种级别、输出何种消息，并在日志禁用时避免任何多余计算。
//
// # 拦截方式
//
// Go 没有字节码织入，调用方通过高阶函数显式包装目标函数：
//
//	site := xaop.NewCallSite(xaop.WithLevel(xaop.LevelInfo))
//	inv := &xaop.Invocation{
//		Signature: xaop.SignatureOf("order.Service", "Create", svc.Create),
//		Args:      []xaop.Arg{{Name: "id", Value: id}},
//	}
//	order, err := xaop.Around(ctx, engine, site, inv, func(ctx context.Context) (*Order, error) {
//		return svc.Create(ctx, id)
//	})
//
// 也可以在已有的拦截点中单独调用 [Engine.Before]、[Engine.AfterReturning]、
// [Engine.AfterThrowing]。
//
// # 事件与模板
//
// 四类事件：entering、exited、exited-abnormally、elapsed。每类事件的级别和消息模板
// 先取调用点配置，未指定（[LevelUnspecified] / 空字符串）时回退到全局 [Config]。
//
// 模板占位符形如 {name}：
//
//   - {method}：方法签名，如 "void foo()"
//   - {parameters}：参数列表，无参数时为 "none"；单个参数可用 {参数名} 或 {arg0} 引用
//   - {return-value}：返回值，void 方法为 "none"
//   - {exception}：type=<类型名>, message=<错误信息>
//   - {elapsed}：耗时
//   - {invocation-id}：本次调用的唯一 ID，同一调用的所有事件共享
//   - {category}：日志分类
//
// 未注册的占位符原样保留。
//
// # 延迟求值
//
// 引擎总是先询问 [Sink.Enabled]，只有级别启用时才注册占位符并渲染模板；
// 占位符的取值函数只在渲染时调用。
//
// # 错误忽略
//
// 调用点和全局的 IgnoreErrors 任一匹配即跳过 exited-abnormally 日志，错误本身仍原样返回。
// 匹配器见 [ErrorType]、[ErrorIs]、[ErrorTypeOf]。
//
// # 热更新
//
// [Engine.SetConfig] 原子替换配置快照；[WatchConfig] 结合 xconf 在文件变更时自动重载。
package xaop
