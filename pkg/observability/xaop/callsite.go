package xaop

// CallSite 单个被拦截声明（方法或类型）上的覆盖配置。
//
// 零值表示全部沿用全局配置：级别为 [LevelUnspecified]、消息为空字符串时回退。
// 空字符串是“沿用全局模板”的唯一标记，因此调用点无法指定字面量空模板。
// nil *CallSite 与零值等价。
type CallSite struct {
	// DeclaringType 非空时替代调用签名中的声明类型，作为日志分类。
	DeclaringType string

	Entering         Event
	Exited           Event
	ExitedAbnormally Event
	Elapsed          Event

	// IgnoreErrors 调用点本地忽略的错误，不会替换全局列表，两者都会检查。
	IgnoreErrors []ErrorMatcher

	// NoStack 为 true 时 exited-abnormally 日志不附带错误对象及堆栈。
	NoStack bool
}

// CallSiteOption 调用点配置选项。
type CallSiteOption func(*CallSite)

// NewCallSite 使用选项构造调用点配置。
func NewCallSite(opts ...CallSiteOption) *CallSite {
	site := &CallSite{}
	for _, opt := range opts {
		if opt != nil {
			opt(site)
		}
	}
	return site
}

// WithDeclaringType 设置日志分类。
func WithDeclaringType(name string) CallSiteOption {
	return func(s *CallSite) {
		s.DeclaringType = name
	}
}

// WithLevel 同时设置 entering、exited、elapsed 的级别。
// exited-abnormally 使用 [WithExitedAbnormallyLevel] 单独设置。
func WithLevel(level Level) CallSiteOption {
	return func(s *CallSite) {
		s.Entering.Level = level
		s.Exited.Level = level
		s.Elapsed.Level = level
	}
}

// WithExitedAbnormallyLevel 设置 exited-abnormally 的级别。
func WithExitedAbnormallyLevel(level Level) CallSiteOption {
	return func(s *CallSite) {
		s.ExitedAbnormally.Level = level
	}
}

// WithEventLevel 设置单个事件的级别。
func WithEventLevel(kind EventKind, level Level) CallSiteOption {
	return func(s *CallSite) {
		s.event(kind).Level = level
	}
}

// WithEnteringMessage 设置 entering 消息模板。
func WithEnteringMessage(msg string) CallSiteOption {
	return func(s *CallSite) {
		s.Entering.Message = msg
	}
}

// WithExitedMessage 设置 exited 消息模板。
func WithExitedMessage(msg string) CallSiteOption {
	return func(s *CallSite) {
		s.Exited.Message = msg
	}
}

// WithExitedAbnormallyMessage 设置 exited-abnormally 消息模板。
func WithExitedAbnormallyMessage(msg string) CallSiteOption {
	return func(s *CallSite) {
		s.ExitedAbnormally.Message = msg
	}
}

// WithElapsedMessage 设置 elapsed 消息模板。
func WithElapsedMessage(msg string) CallSiteOption {
	return func(s *CallSite) {
		s.Elapsed.Message = msg
	}
}

// WithIgnoreErrors 追加调用点忽略的错误。
func WithIgnoreErrors(matchers ...ErrorMatcher) CallSiteOption {
	return func(s *CallSite) {
		s.IgnoreErrors = append(s.IgnoreErrors, matchers...)
	}
}

// WithoutStack 关闭 exited-abnormally 日志中的错误对象与堆栈。
func WithoutStack() CallSiteOption {
	return func(s *CallSite) {
		s.NoStack = true
	}
}

func (s *CallSite) event(kind EventKind) *Event {
	switch kind {
	case EventEntering:
		return &s.Entering
	case EventExited:
		return &s.Exited
	case EventExitedAbnormally:
		return &s.ExitedAbnormally
	default:
		return &s.Elapsed
	}
}

// zeroSite 供 nil *CallSite 使用，只读。
var zeroSite CallSite

func siteOrZero(s *CallSite) *CallSite {
	if s == nil {
		return &zeroSite
	}
	return s
}
