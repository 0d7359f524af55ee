package xaop

import "strconv"

// EventKind 调用生命周期中可记录日志的时刻。
type EventKind uint8

const (
	// EventEntering 进入方法。
	EventEntering EventKind = iota
	// EventExited 正常返回。
	EventExited
	// EventExitedAbnormally 返回错误或 panic。
	EventExitedAbnormally
	// EventElapsed 调用耗时。
	EventElapsed
)

// String 返回事件名称，与配置文件中的 key 一致。
func (k EventKind) String() string {
	switch k {
	case EventEntering:
		return "entering"
	case EventExited:
		return "exited"
	case EventExitedAbnormally:
		return "exited-abnormally"
	case EventElapsed:
		return "elapsed"
	default:
		return "EventKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Event 单个事件的级别与消息模板。
type Event struct {
	Level   Level
	Message string
}

// 默认消息模板。
const (
	DefaultEnteringMessage         = "Entering [{method}] with parameters [{parameters}]"
	DefaultExitedMessage           = "[{method}] exited normally with return value [{return-value}]"
	DefaultExitedAbnormallyMessage = "[{method}] exited abnormally with exception [{exception}]"
	DefaultElapsedMessage          = "[{method}] elapsed [{elapsed}]"
)
