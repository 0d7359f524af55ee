// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xaop: 方法拦截与模板化日志引擎
//   - xlog: 结构化日志，基于 log/slog 扩展，支持按分类设置级别
//   - xmetrics: 调用观测接口（span 与调用指标），默认实现基于 OpenTelemetry
//   - xrotate: 日志文件轮转
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 自动从 context 中提取追踪信息注入日志
//   - 日志级别可在运行时调整
package observability
