package xsock

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/omeyang/xipc/pkg/util/xproc"
)

// 运行参数默认值。
const (
	// DefaultReceiveTimeout 客户端连接默认接收超时。
	DefaultReceiveTimeout = 10 * time.Second

	// DefaultSendTimeout 客户端连接默认发送超时。
	DefaultSendTimeout = 10 * time.Second

	// DefaultDeadline 默认读写截止时长，0 表示不限时。
	DefaultDeadline time.Duration = 0

	// DefaultBacklog 默认监听队列长度。
	DefaultBacklog = 50
)

// RunConfig 一个本地套接字服务端的运行参数。
//
// 可选参数未设置时访问器返回默认值。参数在 Manager.Start 时才校验，
// 构造本身不会失败。除 fd 外，RunConfig 在启动后应视为只读。
type RunConfig struct {
	title    string
	path     string
	abstract bool
	handler  Handler

	fd atomic.Int64

	backlog        *int
	receiveTimeout *time.Duration
	sendTimeout    *time.Duration
	deadline       *time.Duration
	errorSink      ErrorSink
}

// ConfigOption 配置 [RunConfig] 的可选参数。
type ConfigOption func(*RunConfig)

// WithBacklog 设置监听队列长度，必须在 1 到 [MaxBacklog] 之间。
func WithBacklog(n int) ConfigOption {
	return func(c *RunConfig) { c.backlog = &n }
}

// WithReceiveTimeout 设置客户端连接的接收超时（SO_RCVTIMEO），0 表示不超时。
func WithReceiveTimeout(d time.Duration) ConfigOption {
	return func(c *RunConfig) { c.receiveTimeout = &d }
}

// WithSendTimeout 设置客户端连接的发送超时（SO_SNDTIMEO），0 表示不超时。
func WithSendTimeout(d time.Duration) ConfigOption {
	return func(c *RunConfig) { c.sendTimeout = &d }
}

// WithDeadline 设置 [ClientConn.Read] 和 [ClientConn.Write] 的相对截止时长，0 表示不限时。
func WithDeadline(d time.Duration) ConfigOption {
	return func(c *RunConfig) { c.deadline = &d }
}

// WithErrorSink 设置错误回调。处理器自身实现 [ErrorSink] 时优先使用处理器。
func WithErrorSink(sink ErrorSink) ConfigOption {
	return func(c *RunConfig) { c.errorSink = sink }
}

// NewRunConfig 创建运行参数。
//
// path 首字节为 NUL 时是抽象命名空间地址，原样保留；否则按文件系统路径 Clean。
// title 为空时使用当前进程名。
func NewRunConfig(title, path string, handler Handler, opts ...ConfigOption) *RunConfig {
	if title == "" {
		title = xproc.ProcessName()
	}
	abstract := len(path) > 0 && path[0] == 0
	if !abstract && path != "" {
		path = filepath.Clean(path)
	}
	c := &RunConfig{
		title:    title,
		path:     path,
		abstract: abstract,
		handler:  handler,
	}
	c.fd.Store(-1)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Title 返回日志标题。
func (c *RunConfig) Title() string { return c.title }

// Path 返回套接字路径，抽象命名空间路径包含首个 NUL。
func (c *RunConfig) Path() string { return c.path }

// Address 返回传给 bind 的地址字节。
func (c *RunConfig) Address() []byte { return []byte(c.path) }

// DisplayPath 返回可打印的路径，抽象命名空间的首个 NUL 显示为 '@'。
func (c *RunConfig) DisplayPath() string { return printableAddress([]byte(c.path)) }

// IsAbstractNamespace 报告路径是否属于 Linux 抽象命名空间。
func (c *RunConfig) IsAbstractNamespace() bool { return c.abstract }

// Handler 返回连接处理器。
func (c *RunConfig) Handler() Handler { return c.handler }

// FD 返回监听 fd，未监听时为 -1。
func (c *RunConfig) FD() int { return int(c.fd.Load()) }

// SetFD 设置监听 fd，负数统一存为 -1。
func (c *RunConfig) SetFD(fd int) {
	if fd < 0 {
		fd = -1
	}
	c.fd.Store(int64(fd))
}

// Backlog 返回监听队列长度。
func (c *RunConfig) Backlog() int {
	if c.backlog == nil {
		return DefaultBacklog
	}
	return *c.backlog
}

// ReceiveTimeout 返回接收超时。
func (c *RunConfig) ReceiveTimeout() time.Duration {
	if c.receiveTimeout == nil {
		return DefaultReceiveTimeout
	}
	return *c.receiveTimeout
}

// SendTimeout 返回发送超时。
func (c *RunConfig) SendTimeout() time.Duration {
	if c.sendTimeout == nil {
		return DefaultSendTimeout
	}
	return *c.sendTimeout
}

// Deadline 返回相对截止时长。
func (c *RunConfig) Deadline() time.Duration {
	if c.deadline == nil {
		return DefaultDeadline
	}
	return *c.deadline
}

// deadlineFromNow 把相对截止时长换算为绝对时间，0 返回零值（不限时）。
func (c *RunConfig) deadlineFromNow() time.Time {
	d := c.Deadline()
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

// ErrorSink 返回生效的错误回调：处理器实现了 [ErrorSink] 时返回处理器，
// 否则返回 [WithErrorSink] 设置的回调，都没有时返回 nil。
func (c *RunConfig) ErrorSink() ErrorSink {
	if sink, ok := c.handler.(ErrorSink); ok {
		return sink
	}
	return c.errorSink
}

// validate 按固定顺序检查与文件系统无关的参数。
func (c *RunConfig) validate() error {
	switch {
	case c.path == "":
		return ErrPathEmpty.New()
	case len(c.path) > MaxPathLen:
		return ErrPathTooLong.New(len(c.path), MaxPathLen)
	case c.Backlog() <= 0:
		return ErrBacklogInvalid.New(c.Backlog(), MaxBacklog)
	case c.ReceiveTimeout() < 0:
		return ErrTimeoutInvalid.New("receive timeout", c.ReceiveTimeout(), c.title)
	case c.SendTimeout() < 0:
		return ErrTimeoutInvalid.New("send timeout", c.SendTimeout(), c.title)
	case c.Deadline() < 0:
		return ErrTimeoutInvalid.New("deadline", c.Deadline(), c.title)
	case c.handler == nil:
		return ErrHandlerMissing.New(c.title)
	}
	return nil
}

// String 返回多行的参数描述。
func (c *RunConfig) String() string {
	return fmt.Sprintf("Title: %s\nPath: %s\nAbstractNamespace: %t\nFD: %d\nBacklog: %d\nReceiveTimeout: %v\nSendTimeout: %v\nDeadline: %v",
		c.title, c.DisplayPath(), c.abstract, c.FD(), c.Backlog(), c.ReceiveTimeout(), c.SendTimeout(), c.Deadline())
}

// LogValue 实现 slog.LogValuer。
func (c *RunConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("title", c.title),
		slog.String("path", c.DisplayPath()),
		slog.Bool("abstract", c.abstract),
		slog.Int("fd", c.FD()),
		slog.Int("backlog", c.Backlog()),
		slog.Duration("receive_timeout", c.ReceiveTimeout()),
		slog.Duration("send_timeout", c.SendTimeout()),
		slog.Duration("deadline", c.Deadline()),
	)
}
