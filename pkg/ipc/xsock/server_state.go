package xsock

// ServerState 服务端状态。
//
//	NotStarted -> Starting -> Listening -> Stopping -> Stopped
//	                  |                                  |
//	                  +-> Failed                         |
//	Failed / Stopped 可以再次 Start。
type ServerState int32

const (
	// StateNotStarted 尚未启动。
	StateNotStarted ServerState = iota
	// StateStarting 正在执行启动检查和创建监听。
	StateStarting
	// StateListening 监听中，监听 goroutine 正在运行。
	StateListening
	// StateStopping 正在停止。
	StateStopping
	// StateStopped 已停止。
	StateStopped
	// StateFailed 启动失败。
	StateFailed
)

// String 返回状态的字符串表示。
func (s ServerState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// canStart 报告该状态下是否允许 Start。
func (s ServerState) canStart() bool {
	return s == StateNotStarted || s == StateStopped || s == StateFailed
}
