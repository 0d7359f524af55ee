package xaop

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// noneMarker 无参数、void 返回值时的占位文本。
const noneMarker = "none"

// fmtPanicMarker fmt 捕获 String()/Error() panic 后输出的标记，嵌套在容器中时同样出现。
const fmtPanicMarker = "%!v(PANIC="

// formatValue 尽力把任意值转为字符串，失败时降级为 "<unprintable T>"。
func formatValue(v any) (s string) {
	defer func() {
		if rec := recover(); rec != nil {
			s = unprintable(v)
		}
	}()
	s = fmt.Sprint(v)
	if strings.Contains(s, fmtPanicMarker) {
		return unprintable(v)
	}
	return s
}

func unprintable(v any) string {
	return fmt.Sprintf("<unprintable %T>", v)
}

// formatArgs 格式化参数列表：name=value, name=value；无参数时返回 "none"。
func formatArgs(args []Arg) string {
	if len(args) == 0 {
		return noneMarker
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(argName(i, arg))
		b.WriteByte('=')
		b.WriteString(formatValue(arg.Value))
	}
	return b.String()
}

func argName(i int, arg Arg) string {
	if arg.Name != "" {
		return arg.Name
	}
	return positionalName(i)
}

func positionalName(i int) string {
	return "arg" + strconv.Itoa(i)
}

// formatError 格式化为 "type=<类型名>, message=<错误信息>"，错误信息为空时省略 message 部分。
func formatError(err error) string {
	if err == nil {
		return noneMarker
	}
	typ := "type=" + simpleTypeName(err)
	msg := errorMessage(err)
	if msg == "" {
		return typ
	}
	return typ + ", message=" + msg
}

func errorMessage(err error) (msg string) {
	defer func() {
		if rec := recover(); rec != nil {
			msg = ""
		}
	}()
	return err.Error()
}

// simpleTypeName 返回去掉指针和包路径的类型名，如 *fs.PathError → PathError。
func simpleTypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	name := t.String()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// formatElapsed 格式化耗时，负值按 0 处理。
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.String()
}
