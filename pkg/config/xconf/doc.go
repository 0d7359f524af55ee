// Package xconf 提供基于 koanf 的配置加载与热重载。
//
// # 设计理念
//
// xconf 只负责加载、反序列化和文件监视，不负责配置治理（必选字段、默认值、校验），
// 这些由使用方在 Unmarshal 之后完成（例如 xaop.LoadConfig）。
//
//   - 工厂函数：[New]、[NewFromBytes]
//   - Client() 暴露当前快照的 koanf 实例
//   - 增值功能：原子 Reload、类型安全 Unmarshal、快照版本号
//
// # 支持的格式
//
//   - YAML（推荐）：.yaml, .yml
//   - JSON：.json
//
// # 快照语义
//
// 每次 Reload 成功都会构造新的 koanf 实例并通过 atomic.Pointer 整体替换，
// 同时递增 [Config.Version]。解析失败时保留旧快照。
// Client() 返回的指针在 Reload 之后依然可用，但指向旧数据，不要长期缓存。
//
// # 配置监视
//
// [Watch] 基于 fsnotify 监视配置文件所在目录，内置防抖，兼容编辑器的
// rename 原子写入。Stop 返回后监视循环已退出，不会再触发新的重载。
package xconf
