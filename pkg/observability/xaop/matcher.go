package xaop

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrorMatcher 判断错误是否命中忽略规则。
type ErrorMatcher interface {
	Match(err error) bool
}

// typeMatcher 按类型匹配错误链中的任一错误。
type typeMatcher struct {
	typ reflect.Type
}

// ErrorType 返回按类型匹配的 ErrorMatcher。
//
// 错误链（含 Unwrap() []error）中任一错误可赋值给 E 即命中：
// E 为接口时匹配所有实现类型，E 为具体类型时只匹配该类型。
//
//	xaop.ErrorType[*fs.PathError]()
//	xaop.ErrorType[net.Error]()
func ErrorType[E error]() ErrorMatcher {
	return typeMatcher{typ: reflect.TypeFor[E]()}
}

// ErrorTypeOf 是 [ErrorType] 的反射形式，t 为 nil 时返回 nil（匹配时被跳过）。
func ErrorTypeOf(t reflect.Type) ErrorMatcher {
	if t == nil {
		return nil
	}
	return typeMatcher{typ: t}
}

// Match 实现 ErrorMatcher。
func (m typeMatcher) Match(err error) bool {
	if m.typ == nil {
		return false
	}
	return anyInChain(err, func(e error) bool {
		return reflect.TypeOf(e).AssignableTo(m.typ)
	})
}

// String 返回类型名。
func (m typeMatcher) String() string {
	if m.typ == nil {
		return "<nil>"
	}
	return m.typ.String()
}

// isMatcher 按 errors.Is 匹配哨兵错误。
type isMatcher struct {
	target error
}

// ErrorIs 返回按 errors.Is 匹配哨兵错误的 ErrorMatcher，target 为 nil 时返回 nil。
func ErrorIs(target error) ErrorMatcher {
	if target == nil {
		return nil
	}
	return isMatcher{target: target}
}

// Match 实现 ErrorMatcher。
func (m isMatcher) Match(err error) bool {
	return errors.Is(err, m.target)
}

// String 返回哨兵错误描述。
func (m isMatcher) String() string {
	return fmt.Sprintf("is(%v)", m.target)
}

// IsIgnored 判断 exited-abnormally 日志是否应被跳过。
//
// err 为 nil 时返回 true（没有错误可记录）。
// 调用点列表或全局列表任一命中即忽略；nil 条目被跳过，空列表不匹配任何错误。
func IsIgnored(err error, site, global []ErrorMatcher) bool {
	if err == nil {
		return true
	}
	return matchAny(err, site) || matchAny(err, global)
}

func matchAny(err error, matchers []ErrorMatcher) bool {
	for _, m := range matchers {
		if isNilMatcher(m) {
			continue
		}
		if m.Match(err) {
			return true
		}
	}
	return false
}

// isNilMatcher 同时识别 nil 接口和装箱的 nil 指针。
func isNilMatcher(m ErrorMatcher) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// anyInChain 深度优先遍历错误链。
func anyInChain(err error, fn func(error) bool) bool {
	for err != nil {
		if fn(err) {
			return true
		}
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				if anyInChain(e, fn) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}

// PanicError 包装被拦截函数中发生的 panic。
//
// 仅用于日志和忽略匹配；[Around] 记录后会以原始值重新 panic。
type PanicError struct {
	Value any
	Stack []byte
}

// Error 实现 error 接口。
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap 在 panic 值本身是 error 时返回它。
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
