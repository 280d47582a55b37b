package xsock

import "time"

//go:generate mockgen -source=bridge.go -destination=mock_bridge_test.go -package=xsock

// 地址与 backlog 上界。
const (
	// MaxPathLen 套接字地址最大字节数（sockaddr_un.sun_path）。
	MaxPathLen = 108

	// MaxBacklog 监听队列长度上界。
	MaxBacklog = 500
)

// Cred 对端进程凭证，未知字段为 -1。
type Cred struct {
	PID int
	UID int
	GID int
}

// Bridge 是本地套接字的原生系统调用边界。
//
// 每个操作都返回 (结果, error)，失败时 error 为 [*Error]（2xx 错误码为主），
// 底层 errno 作为原因附带。实现必须把内部 panic 转换为 [ErrBridgePanic]。
// 测试中可以替换为假实现，服务端的所有系统调用都经过这里。
type Bridge interface {
	// CreateListener 创建、绑定并监听 AF_UNIX/SOCK_STREAM 套接字，返回监听 fd。
	// address 首字节为 NUL 时使用 Linux 抽象命名空间。
	CreateListener(address []byte, backlog int) (int, error)

	// CloseSocket 关闭 fd。阻塞在该 fd 上的 Accept 会被唤醒并返回错误。
	CloseSocket(fd int) error

	// Shutdown 关闭连接的读写两端但保留 fd，唤醒阻塞在该 fd 上的 Read/Send。
	// 对未连接的套接字是空操作。
	Shutdown(fd int) error

	// Accept 阻塞直到有新连接，返回客户端 fd。
	Accept(fd int) (int, error)

	// Read 循环读取直到填满 p 或遇到 EOF（EOF 不是错误）。
	// 每次系统调用前检查 deadline，已过期返回 [ErrDeadlineExceeded]，n 为已读字节数。
	// deadline 为零值表示不限时。
	Read(fd int, p []byte, deadline time.Time) (int, error)

	// Send 循环写入直到 p 全部发出，截止时间语义同 Read。
	Send(fd int, p []byte, deadline time.Time) (int, error)

	// Available 返回可无阻塞读取的字节数。
	Available(fd int) (int, error)

	// SetReceiveTimeout 设置 SO_RCVTIMEO，0 表示不超时。
	SetReceiveTimeout(fd int, timeout time.Duration) error

	// SetSendTimeout 设置 SO_SNDTIMEO，0 表示不超时。
	SetSendTimeout(fd int, timeout time.Duration) error

	// PeerCred 返回对端进程凭证。
	PeerCred(fd int) (Cred, error)
}

// unknownCred 返回全部字段为 -1 的凭证。
func unknownCred() Cred {
	return Cred{PID: -1, UID: -1, GID: -1}
}

// guard 把原生调用中的 panic 转为 [ErrBridgePanic]，配合具名返回值使用。
func guard(op string, err *error) {
	if r := recover(); r != nil {
		*err = ErrBridgePanic.New(op, r)
	}
}

// expired 判断截止时间是否已过，零值永不过期。
func expired(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

// printableAddress 把抽象命名空间地址的首个 NUL 显示为 '@'。
func printableAddress(address []byte) string {
	if len(address) > 0 && address[0] == 0 {
		return "@" + string(address[1:])
	}
	return string(address)
}
