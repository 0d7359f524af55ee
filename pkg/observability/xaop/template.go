package xaop

import (
	"fmt"
	"strings"
)

// 占位符定界符。
const (
	placeholderOpen = '{'
	delimiters      = "{}"
)

// Render 用 r 中的取值函数替换 template 里的 {name} 占位符。
//
// 每个被识别的占位符调用一次对应取值函数；未注册的占位符、不成对的 '{' 原样保留。
// 取值函数 panic 时以 "<error: ...>" 代替，Render 本身不会 panic。
func Render(template string, r *Registry) string {
	if strings.IndexByte(template, placeholderOpen) < 0 {
		return template
	}

	var b strings.Builder
	b.Grow(len(template) + 32)

	for i := 0; i < len(template); {
		open := strings.IndexByte(template[i:], placeholderOpen)
		if open < 0 {
			b.WriteString(template[i:])
			break
		}
		open += i
		b.WriteString(template[i:open])

		end := strings.IndexAny(template[open+1:], delimiters)
		if end < 0 {
			b.WriteString(template[open:])
			break
		}
		end += open + 1

		// 内层出现新的 '{'：当前 '{' 作为普通文本，从内层重新扫描。
		if template[end] == placeholderOpen {
			b.WriteString(template[open:end])
			i = end
			continue
		}

		key := template[open+1 : end]
		if fn, ok := r.Lookup(key); ok {
			b.WriteString(supply(fn))
		} else {
			b.WriteString(template[open : end+1])
		}
		i = end + 1
	}
	return b.String()
}

// supply 调用取值函数并隔离 panic。
func supply(fn func() string) (s string) {
	defer func() {
		if rec := recover(); rec != nil {
			s = fmt.Sprintf("<error: %v>", rec)
		}
	}()
	return fn()
}
