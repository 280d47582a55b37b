package xsock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// 错误类别。
const (
	TypeConfig  = "config"
	TypeSyscall = "syscall"
	TypeState   = "state"
	TypeAuth    = "auth"
	TypeHandler = "handler"
)

// CodeSuccess 表示成功，不对应任何错误。
const CodeSuccess = 0

// CodeUnknown 是非 xsock 错误的错误码。
const CodeUnknown = -1

// Errno 是错误目录项：类别、错误码和消息模板。
//
// Errno 本身实现 error，可直接作为 errors.Is 的比较目标。
type Errno struct {
	Type   string
	Code   int
	Format string
}

// Error 返回目录项的描述，不做参数格式化。
func (e Errno) Error() string {
	return "xsock: [" + e.Type + " " + strconv.Itoa(e.Code) + "] " + e.Format
}

// New 按模板格式化消息，返回错误实例。
func (e Errno) New(args ...any) *Error {
	return &Error{Type: e.Type, Code: e.Code, Message: formatMessage(e.Format, args)}
}

// Wrap 同 New，并附带底层原因。cause 为 nil 时等同 New。
func (e Errno) Wrap(cause error, args ...any) *Error {
	err := e.New(args...)
	if cause != nil {
		err.Causes = []error{cause}
	}
	return err
}

// WithCauses 同 New，并附带多个底层原因（忽略 nil）。
func (e Errno) WithCauses(causes []error, args ...any) *Error {
	err := e.New(args...)
	for _, c := range causes {
		if c != nil {
			err.Causes = append(err.Causes, c)
		}
	}
	return err
}

// formatMessage 格式化失败（panic 或出现 %! 动词错误标记）时回退为未格式化的模板加参数。
func formatMessage(format string, args []any) (msg string) {
	if len(args) == 0 {
		return format
	}
	defer func() {
		if r := recover(); r != nil {
			msg = format + ": " + fmt.Sprint(args)
		}
	}()
	msg = fmt.Sprintf(format, args...)
	if strings.Contains(msg, "%!") {
		return format + ": " + fmt.Sprint(args)
	}
	return msg
}

// Error 是 xsock 返回的错误。
type Error struct {
	Type    string
	Code    int
	Message string
	Causes  []error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("xsock: ")
	b.WriteString(e.Message)
	for i, c := range e.Causes {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(c.Error())
	}
	return b.String()
}

// Unwrap 返回底层原因，支持 errors.Is / errors.As 穿透。
func (e *Error) Unwrap() []error {
	return e.Causes
}

// Is 按错误码匹配 [Errno] 或 [*Error]。
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Errno:
		return e.Code == t.Code
	case *Error:
		return t != nil && e.Code == t.Code
	}
	return false
}

// CodeOf 返回 err 链上第一个 [*Error] 的错误码。
// err 为 nil 返回 [CodeSuccess]，不含 xsock 错误返回 [CodeUnknown]。
func CodeOf(err error) int {
	if err == nil {
		return CodeSuccess
	}
	var xe *Error
	if errors.As(err, &xe) {
		return xe.Code
	}
	return CodeUnknown
}

// 配置错误（1xx）。
var (
	ErrPathEmpty       = Errno{TypeConfig, 100, "local socket path is empty"}
	ErrPathTooLong     = Errno{TypeConfig, 101, "local socket path is %d bytes, max %d"}
	ErrPathNotAbsolute = Errno{TypeConfig, 102, "local socket path %q of %q server is not absolute"}
	ErrBacklogInvalid  = Errno{TypeConfig, 103, "invalid backlog %d, must be between 1 and %d"}
	ErrHandlerMissing  = Errno{TypeConfig, 104, "handler of %q server is nil"}
	ErrTimeoutInvalid  = Errno{TypeConfig, 105, "invalid %s %v of %q server"}
	ErrConfigMissing   = Errno{TypeConfig, 106, "run config is nil"}
)

// 系统调用错误（2xx）。
var (
	ErrBridgePanic           = Errno{TypeSyscall, 200, "native %s panicked: %v"}
	ErrBridgeUnsupported     = Errno{TypeSyscall, 201, "local sockets are not supported on %s"}
	ErrCreateListenerFailed  = Errno{TypeSyscall, 202, "create listener on %q failed"}
	ErrListenerFDInvalid     = Errno{TypeSyscall, 203, "listener fd %d of %q server is invalid"}
	ErrCloseSocketFailed     = Errno{TypeSyscall, 204, "close fd %d failed"}
	ErrAcceptFailed          = Errno{TypeSyscall, 205, "accept on listener fd %d failed"}
	ErrClientFDInvalid       = Errno{TypeSyscall, 206, "accepted client fd %d is invalid"}
	ErrPeerCredFailed        = Errno{TypeSyscall, 207, "query peer credentials of fd %d failed"}
	ErrSetReceiveTimeoutFail = Errno{TypeSyscall, 208, "set receive timeout %v on fd %d failed"}
	ErrSetSendTimeoutFail    = Errno{TypeSyscall, 209, "set send timeout %v on fd %d failed"}
	ErrReadFailed            = Errno{TypeSyscall, 210, "read from fd %d failed after %d bytes"}
	ErrSendFailed            = Errno{TypeSyscall, 211, "send to fd %d failed after %d bytes"}
	ErrAvailableFailed       = Errno{TypeSyscall, 212, "query available bytes on fd %d failed"}
	ErrShutdownFailed        = Errno{TypeSyscall, 213, "shutdown fd %d failed"}
)

// 资源状态错误（3xx）。
var (
	ErrSocketDirInvalid    = Errno{TypeState, 300, "prepare parent directory of %q for %q server failed"}
	ErrStaleSocketRemove   = Errno{TypeState, 301, "remove socket file %q of %q server failed"}
	ErrServerRunning       = Errno{TypeState, 302, "%q server is already %s"}
	ErrConnClosed          = Errno{TypeState, 303, "client connection %s is closed"}
	ErrDeadlineExceeded    = Errno{TypeState, 304, "%s on fd %d exceeded deadline after %d bytes"}
	ErrListenerPanic       = Errno{TypeState, 305, "listener of %q server panicked: %v"}
	ErrStopFailed          = Errno{TypeState, 306, "stop %q server failed"}
	ErrListenerStopTimeout = Errno{TypeState, 307, "listener of %q server did not exit within %v"}
	ErrReadLimitExceeded   = Errno{TypeState, 308, "client connection %s sent more than %d bytes"}
)

// 对端未授权（4xx）。
var (
	ErrPeerUIDDisallowed = Errno{TypeAuth, 400, "disallowed peer connected to %q server, allowed uids are %d and 0: %s"}
	ErrPeerUIDInvalid    = Errno{TypeAuth, 401, "peer with invalid uid connected to %q server: %s"}
)

// 处理器异常（5xx）。
var (
	ErrHandlerPanic = Errno{TypeHandler, 500, "handler of %q server panicked on connection %s: %v"}
)
