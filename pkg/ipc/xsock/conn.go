package xsock

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// readAllChunk ReadAll 每次读取的块大小。
const readAllChunk = 4096

// ClientConn 一个已接入的客户端连接，独占一个 fd。
//
// 所有方法都可并发调用。Close 之后的读写返回 [ErrConnClosed]。
// 进行中的读写持有 ioMu 读锁，Close 先 shutdown 唤醒它们，
// 等全部返回后才释放 fd，fd 编号被新连接复用时旧的读写不会落到新连接上。
type ClientConn struct {
	id     string
	cfg    *RunConfig
	bridge Bridge
	peer   *PeerIdentity

	fd   atomic.Int64
	ioMu sync.RWMutex
}

func newClientConn(cfg *RunConfig, bridge Bridge, fd int, peer *PeerIdentity) *ClientConn {
	if peer == nil {
		peer = UnknownPeer()
	}
	c := &ClientConn{
		id:     uuid.NewString(),
		cfg:    cfg,
		bridge: bridge,
		peer:   peer,
	}
	if fd < 0 {
		fd = -1
	}
	c.fd.Store(int64(fd))
	return c
}

// ID 返回连接 ID，用于日志关联。
func (c *ClientConn) ID() string { return c.id }

// FD 返回连接 fd，关闭后为 -1。
func (c *ClientConn) FD() int { return int(c.fd.Load()) }

// Peer 返回对端身份。
func (c *ClientConn) Peer() *PeerIdentity { return c.peer }

// Config 返回所属服务端的运行参数。
func (c *ClientConn) Config() *RunConfig { return c.cfg }

// IsClosed 报告连接是否已关闭。
func (c *ClientConn) IsClosed() bool { return c.FD() < 0 }

// acquire 取得 fd 并持有 ioMu 读锁，成功时调用方必须调用 release。
func (c *ClientConn) acquire() (int, error) {
	c.ioMu.RLock()
	fd := c.FD()
	if fd < 0 {
		c.ioMu.RUnlock()
		return -1, ErrConnClosed.New(c.id)
	}
	return fd, nil
}

func (c *ClientConn) release() { c.ioMu.RUnlock() }

// SetReceiveTimeout 把运行参数中的接收超时应用到连接。
func (c *ClientConn) SetReceiveTimeout() error {
	fd, err := c.acquire()
	if err != nil {
		return err
	}
	defer c.release()
	return c.bridge.SetReceiveTimeout(fd, c.cfg.ReceiveTimeout())
}

// SetSendTimeout 把运行参数中的发送超时应用到连接。
func (c *ClientConn) SetSendTimeout() error {
	fd, err := c.acquire()
	if err != nil {
		return err
	}
	defer c.release()
	return c.bridge.SetSendTimeout(fd, c.cfg.SendTimeout())
}

// ReadWithDeadline 读取直到填满 p、遇到 EOF 或出错。
// deadline 为零值表示不限时，已过期立即失败。
func (c *ClientConn) ReadWithDeadline(p []byte, deadline time.Time) (int, error) {
	fd, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer c.release()
	return c.bridge.Read(fd, p, deadline)
}

// SendWithDeadline 发送 p 的全部字节。deadline 语义同 [ClientConn.ReadWithDeadline]。
func (c *ClientConn) SendWithDeadline(p []byte, deadline time.Time) (int, error) {
	fd, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer c.release()
	return c.bridge.Send(fd, p, deadline)
}

// SendString 发送字符串。
func (c *ClientConn) SendString(s string, deadline time.Time) error {
	_, err := c.SendWithDeadline([]byte(s), deadline)
	return err
}

// Read 实现 io.Reader。
//
// 只读取当前可读的字节（至少等待 1 字节），不会为了填满 p 而阻塞。
// 截止时间取自 [RunConfig.Deadline]，对端关闭且无数据时返回 io.EOF。
func (c *ClientConn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	want := 1
	if avail, err := c.Available(); err == nil && avail > 0 {
		want = min(avail, len(p))
	}
	n, err := c.ReadWithDeadline(p[:want], c.cfg.deadlineFromNow())
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write 实现 io.Writer，截止时间取自 [RunConfig.Deadline]。
func (c *ClientConn) Write(p []byte) (int, error) {
	return c.SendWithDeadline(p, c.cfg.deadlineFromNow())
}

// ReadAll 读取直到对端关闭写端。超过 limit 字节时返回已读数据和 [ErrReadLimitExceeded]，
// limit <= 0 表示不限制。
func (c *ClientConn) ReadAll(deadline time.Time, limit int) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, readAllChunk)
	for {
		n, err := c.ReadWithDeadline(chunk, deadline)
		buf = append(buf, chunk[:n]...)
		if limit > 0 && len(buf) > limit {
			return buf[:limit], ErrReadLimitExceeded.New(c.id, limit)
		}
		if err != nil {
			return buf, err
		}
		if n < len(chunk) {
			return buf, nil
		}
	}
}

// Available 返回可无阻塞读取的字节数。
func (c *ClientConn) Available() (int, error) {
	fd, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer c.release()
	return c.bridge.Available(fd)
}

// Close 关闭连接，重复调用返回 nil。
//
// 其他 goroutine 中阻塞的读写被唤醒并返回错误，Close 等它们返回后才关闭 fd。
func (c *ClientConn) Close() error {
	fd := int(c.fd.Swap(-1))
	if fd < 0 {
		return nil
	}
	_ = c.bridge.Shutdown(fd) //nolint:errcheck // best effort wakeup

	c.ioMu.Lock()
	defer c.ioMu.Unlock()
	return c.bridge.CloseSocket(fd)
}

// LogValue 实现 slog.LogValuer。
func (c *ClientConn) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", c.id),
		slog.Int("fd", c.FD()),
		slog.Any("peer", c.peer),
	)
}
