package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// maxReplySize 单次回复读取上限。
const maxReplySize = 1 << 20

// errNotSocket 目标路径存在但不是套接字。
var errNotSocket = errors.New("不是套接字文件")

// Client 套接字客户端，每次交互使用一条新连接。
type Client struct {
	socketPath string
	timeout    time.Duration
	retries    uint
	retryDelay time.Duration
}

// NewClient 创建客户端。retries 为 0 时只尝试一次。
func NewClient(socketPath string, timeout time.Duration, retries uint, retryDelay time.Duration) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    timeout,
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// isAbstract 路径以 @ 开头时，net 包将其映射到 Linux 抽象命名空间。
func (c *Client) isAbstract() bool {
	return strings.HasPrefix(c.socketPath, "@")
}

// validateSocket 校验目标路径是否为套接字文件。抽象命名空间不落盘，跳过校验。
func (c *Client) validateSocket() (os.FileInfo, error) {
	if c.isAbstract() {
		return nil, nil
	}
	info, err := os.Lstat(c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("无法访问套接字路径 %s: %w", c.socketPath, err)
	}
	if info.Mode().Type()&os.ModeSocket == 0 {
		return info, fmt.Errorf("路径 %s %w（类型: %s）", c.socketPath, errNotSocket, info.Mode().Type())
	}
	return info, nil
}

// retryable 服务启动中或重启中的瞬时错误。
func retryable(err error) bool {
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EAGAIN)
}

// Dial 建立连接，瞬时错误按配置重试。
func (c *Client) Dial(ctx context.Context) (*net.UnixConn, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := retry.NewWithData[net.Conn](
		retry.Context(ctx),
		retry.Attempts(c.retries+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	).Do(func() (net.Conn, error) {
		if _, err := c.validateSocket(); err != nil {
			return nil, err
		}
		return dialer.DialContext(ctx, "unix", c.socketPath)
	})
	if err != nil {
		return nil, fmt.Errorf("连接失败: %w", err)
	}
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		_ = conn.Close() //nolint:errcheck // 类型不符时丢弃连接
		return nil, fmt.Errorf("连接失败: 意外的连接类型 %T", conn)
	}
	return uc, nil
}

// Exchange 发送 payload 后半关闭写端，读取回复直到对端关闭。
func (c *Client) Exchange(ctx context.Context, payload []byte) ([]byte, error) {
	conn, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // defer cleanup

	if err := c.setDeadline(ctx, conn); err != nil {
		return nil, err
	}

	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("发送数据失败: %w", err)
	}
	if err := conn.CloseWrite(); err != nil {
		return nil, fmt.Errorf("关闭写端失败: %w", err)
	}

	reply, err := io.ReadAll(io.LimitReader(conn, maxReplySize))
	if err != nil {
		return reply, fmt.Errorf("接收回复失败: %w", err)
	}
	return reply, nil
}

// Ping 发送探测数据，返回往返时延。对端未回复即关闭视为失败。
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	reply, err := c.Exchange(ctx, []byte("ping\n"))
	if err != nil {
		return 0, err
	}
	if len(reply) == 0 {
		return 0, errors.New("对端未回复即关闭连接（可能未通过身份校验）")
	}
	return time.Since(start), nil
}

func (c *Client) setDeadline(ctx context.Context, conn net.Conn) error {
	deadline, ok := ctx.Deadline()
	if !ok && c.timeout > 0 {
		deadline, ok = time.Now().Add(c.timeout), true
	}
	if !ok {
		return nil
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("设置超时失败: %w", err)
	}
	return nil
}
