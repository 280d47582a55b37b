package main

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/omeyang/xipc/pkg/ipc/xsock"
)

// maxLineSize 单行上限，超过时断开连接。
const maxLineSize = 64 * 1024

// cmdWhoami 回复对端身份而非回显。
const cmdWhoami = "whoami"

// echoHandler 按行回显的示例处理器。
//
// 每条连接由独立 goroutine 处理，返回前关闭连接。closeAll 用于退出时
// 唤醒仍阻塞在读取上的处理器。
type echoHandler struct {
	mu    sync.Mutex
	conns map[string]*xsock.ClientConn
}

func newEchoHandler() *echoHandler {
	return &echoHandler{conns: make(map[string]*xsock.ClientConn)}
}

// OnClientAccepted 实现 xsock.Handler。
func (h *echoHandler) OnClientAccepted(m *xsock.Manager, conn *xsock.ClientConn) {
	h.track(conn)
	defer h.untrack(conn)

	logger := m.Logger().With(slog.String("conn", conn.ID()))
	logger.Debug("xsockd: client accepted", slog.Any("peer", conn.Peer()))

	err := serveLines(conn, conn, func(line string) string {
		if line == cmdWhoami {
			return conn.Peer().String()
		}
		return line
	})
	if err != nil && !conn.IsClosed() {
		logger.Warn("xsockd: client session ended with error", slog.Int("code", xsock.CodeOf(err)), slog.Any("error", err))
	}
	if err := conn.Close(); err != nil {
		logger.Warn("xsockd: close client failed", slog.Any("error", err))
	}
}

// serveLines 逐行读取 r，把 reply 的结果加换行写回 w，读到 EOF 时返回 nil。
func serveLines(r io.Reader, w io.Writer, reply func(line string) string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	for sc.Scan() {
		if _, err := io.WriteString(w, reply(sc.Text())+"\n"); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *echoHandler) track(conn *xsock.ClientConn) {
	h.mu.Lock()
	h.conns[conn.ID()] = conn
	h.mu.Unlock()
}

func (h *echoHandler) untrack(conn *xsock.ClientConn) {
	h.mu.Lock()
	delete(h.conns, conn.ID())
	h.mu.Unlock()
}

// active 返回仍在处理的连接数。
func (h *echoHandler) active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// closeAll 关闭所有仍在处理的连接。
func (h *echoHandler) closeAll() error {
	h.mu.Lock()
	conns := make([]*xsock.ClientConn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	var errs []error
	for _, c := range conns {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
