package xsock

import (
	"context"
	"log/slog"
)

// Handler 处理通过认证的连接。
//
// OnClientAccepted 在每个连接独立的 goroutine 中调用，连接的所有权转移给处理器，
// 处理器负责关闭。处理器 panic 时连接会被关闭，panic 交给 [PanicHandler]。
type Handler interface {
	OnClientAccepted(m *Manager, conn *ClientConn)
}

// HandlerFunc 把普通函数适配为 [Handler]。
type HandlerFunc func(m *Manager, conn *ClientConn)

// OnClientAccepted 实现 [Handler]。
func (f HandlerFunc) OnClientAccepted(m *Manager, conn *ClientConn) {
	f(m, conn)
}

// ErrorSink 接收服务端运行中的非致命错误。
//
// 回调在监听 goroutine 中同步执行，不应阻塞。conn 可能为 nil（如 accept 失败）。
// OnDisallowedPeer 返回后连接会被关闭。
type ErrorSink interface {
	OnError(conn *ClientConn, err error)
	OnDisallowedPeer(conn *ClientConn, err error)
}

// PanicHandler 处理处理器或监听 goroutine 中恢复的 panic。
//
// err 是 [ErrHandlerPanic] 或 [ErrListenerPanic]，消息中包含 panic 值。
// 监听 goroutine 的 panic 没有对应连接，conn 为 nil。
type PanicHandler func(conn *ClientConn, err error, stack []byte)

// LogErrorSink 把错误写入 slog 的默认 [ErrorSink]。
type LogErrorSink struct {
	Logger *slog.Logger
	Title  string
}

func (s LogErrorSink) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// OnError 实现 [ErrorSink]。
func (s LogErrorSink) OnError(conn *ClientConn, err error) {
	attrs := []slog.Attr{slog.String("title", s.Title), slog.Int("code", CodeOf(err)), slog.Any("error", err)}
	if conn != nil {
		attrs = append(attrs, slog.String("conn", conn.ID()), slog.Any("peer", conn.Peer()))
	}
	s.logger().LogAttrs(context.Background(), slog.LevelError, "xsock: local socket error", attrs...)
}

// OnDisallowedPeer 实现 [ErrorSink]。
func (s LogErrorSink) OnDisallowedPeer(conn *ClientConn, err error) {
	attrs := []slog.Attr{slog.String("title", s.Title), slog.Any("error", err)}
	if conn != nil {
		attrs = append(attrs, slog.String("conn", conn.ID()), slog.Any("peer", conn.Peer()))
	}
	s.logger().LogAttrs(context.Background(), slog.LevelWarn, "xsock: disallowed peer rejected", attrs...)
}
