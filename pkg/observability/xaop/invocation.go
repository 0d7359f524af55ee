package xaop

import (
	"context"
	"reflect"
	"runtime"
	"strings"
)

// Signature 被拦截方法的标识。
type Signature struct {
	// DeclaringType 声明类型，默认作为日志分类。
	DeclaringType string
	// Name 方法名。
	Name string
	// ParamTypes 声明的参数类型。
	ParamTypes []string
	// ReturnType 返回类型，空字符串表示 void。
	ReturnType string
}

// IsVoid 报告方法是否没有返回值。
func (s Signature) IsVoid() bool {
	return s.ReturnType == ""
}

// String 返回可读签名，如 "void foo()"、"string bar(int, string)"。
func (s Signature) String() string {
	ret := s.ReturnType
	if ret == "" {
		ret = "void"
	}
	var b strings.Builder
	b.Grow(len(ret) + len(s.Name) + 8)
	b.WriteString(ret)
	b.WriteByte(' ')
	b.WriteString(s.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(s.ParamTypes, ", "))
	b.WriteByte(')')
	return b.String()
}

var (
	errorType   = reflect.TypeFor[error]()
	contextType = reflect.TypeFor[context.Context]()
)

// SignatureOf 通过反射从函数值推导签名。
//
// context.Context 参数不计入 ParamTypes，末尾的 error 返回值不计入 ReturnType。
// name 为空时使用运行时函数名。fn 不是函数时只填充 declaringType 和 name。
func SignatureOf(declaringType, name string, fn any) Signature {
	sig := Signature{DeclaringType: declaringType, Name: name}
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return sig
	}
	if sig.Name == "" {
		sig.Name = funcName(reflect.ValueOf(fn))
	}

	for i := range t.NumIn() {
		in := t.In(i)
		if in == contextType {
			continue
		}
		if t.IsVariadic() && i == t.NumIn()-1 {
			sig.ParamTypes = append(sig.ParamTypes, "..."+in.Elem().String())
			continue
		}
		sig.ParamTypes = append(sig.ParamTypes, in.String())
	}

	outs := make([]string, 0, t.NumOut())
	for i := range t.NumOut() {
		out := t.Out(i)
		if i == t.NumOut()-1 && out == errorType {
			continue
		}
		outs = append(outs, out.String())
	}
	switch len(outs) {
	case 0:
	case 1:
		sig.ReturnType = outs[0]
	default:
		sig.ReturnType = "(" + strings.Join(outs, ", ") + ")"
	}
	return sig
}

// funcName 返回不含包路径的函数名，方法值的 "-fm" 后缀会被去掉。
func funcName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := strings.TrimSuffix(f.Name(), "-fm")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Arg 单个实参。Name 为空时按位置引用（arg0、arg1...）。
type Arg struct {
	Name  string
	Value any
}

// Invocation 一次被拦截调用的只读描述，由拦截方构造。
type Invocation struct {
	Signature Signature
	Args      []Arg
}

// zeroInvocation 供 nil *Invocation 使用，只读。
var zeroInvocation Invocation

func invocationOrZero(inv *Invocation) *Invocation {
	if inv == nil {
		return &zeroInvocation
	}
	return inv
}
