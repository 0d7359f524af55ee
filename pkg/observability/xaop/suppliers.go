package xaop

import (
	"time"

	"github.com/google/uuid"
)

// 内置占位符名称。
const (
	KeyMethod       = "method"
	KeyParameters   = "parameters"
	KeyReturnValue  = "return-value"
	KeyException    = "exception"
	KeyElapsed      = "elapsed"
	KeyInvocationID = "invocation-id"
	KeyCategory     = "category"
)

// call 一次被拦截调用的上下文，只在执行该调用的 goroutine 内使用。
type call struct {
	inv      *Invocation
	category string
	reg      *Registry

	joinPoint bool
	id        string
}

func newCall(inv *Invocation, category string) *call {
	return &call{inv: inv, category: category}
}

// registry 延迟创建 Registry：级别全部禁用时不会分配。
func (c *call) registry() *Registry {
	if c.reg == nil {
		c.reg = NewRegistry()
	}
	return c.reg
}

// invocationID 首次使用时生成，同一调用的所有事件共享。
func (c *call) invocationID() string {
	if c.id == "" {
		c.id = uuid.NewString()
	}
	return c.id
}

// registerJoinPoint 注册方法、参数相关占位符，重复调用无副作用。
func (c *call) registerJoinPoint() {
	if c.joinPoint {
		return
	}
	c.joinPoint = true

	r := c.registry()
	inv := c.inv
	r.Register(KeyMethod, inv.Signature.String)
	r.Register(KeyParameters, func() string { return formatArgs(inv.Args) })
	r.Register(KeyInvocationID, c.invocationID)
	category := c.category
	r.Register(KeyCategory, func() string { return category })

	for i, arg := range inv.Args {
		value := arg.Value
		supplier := func() string { return formatValue(value) }
		if arg.Name != "" {
			r.RegisterIfAbsent(arg.Name, supplier)
		}
		r.RegisterIfAbsent(positionalName(i), supplier)
	}
}

func (c *call) registerReturnValue(ret any) {
	c.registerJoinPoint()
	void := c.inv.Signature.IsVoid()
	c.registry().Register(KeyReturnValue, func() string {
		if void {
			return noneMarker
		}
		return formatValue(ret)
	})
}

func (c *call) registerException(err error) {
	c.registerJoinPoint()
	c.registry().Register(KeyException, func() string { return formatError(err) })
}

func (c *call) registerElapsed(d time.Duration) {
	c.registerJoinPoint()
	c.registry().Register(KeyElapsed, func() string { return formatElapsed(d) })
}
