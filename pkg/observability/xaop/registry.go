package xaop

// Registry 占位符名称到取值函数的有序映射。
//
// 每次调用独占一个 Registry，不跨调用共享；注册只保存函数引用，
// 真正的取值在 [Render] 遇到对应占位符时才执行。
// Registry 不是并发安全的。
type Registry struct {
	keys      []string
	suppliers map[string]func() string
}

// NewRegistry 创建空的 Registry。
func NewRegistry() *Registry {
	return &Registry{suppliers: make(map[string]func() string, 8)}
}

// Register 注册或替换 key 的取值函数，fn 为 nil 时忽略。
func (r *Registry) Register(key string, fn func() string) {
	if fn == nil {
		return
	}
	if _, ok := r.suppliers[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.suppliers[key] = fn
}

// RegisterIfAbsent 仅在 key 未注册时注册，返回是否注册成功。
func (r *Registry) RegisterIfAbsent(key string, fn func() string) bool {
	if fn == nil {
		return false
	}
	if _, ok := r.suppliers[key]; ok {
		return false
	}
	r.Register(key, fn)
	return true
}

// Lookup 返回 key 对应的取值函数。nil Registry 总是返回 false。
func (r *Registry) Lookup(key string) (func() string, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.suppliers[key]
	return fn, ok
}

// Keys 按注册顺序返回所有 key。
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len 返回已注册的 key 数量。
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}
