package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

// maxStdinSize send 命令从标准输入读取的上限。
const maxStdinSize = 1 << 20

// exitError 表示命令已完成输出，只需设置非零退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// cliUsageMarkers urfave/cli 与 flag 包参数错误的消息特征。
var cliUsageMarkers = []string{
	"flag provided but not defined",
	"flag needs an argument",
	"invalid value",
	"invalid boolean",
	"Required flag",
	"No help topic for",
}

// isCLIUsageError 判断是否为 CLI 框架产生的参数错误。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, m := range cliUsageMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// createCommands 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createSendCommand(),
		createPingCommand(),
		createProbeCommand(),
	}
}

func createSendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Aliases:   []string{"x"},
		Usage:     "发送数据并打印服务端回复",
		ArgsUsage: "[data...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := clientFromCommand(cmd)
			if err != nil {
				return err
			}
			return cmdSend(ctx, client, cmd.Args().Slice(), os.Stdin, os.Stdout)
		},
	}
}

func createPingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "发送探测数据并测量往返时延",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := clientFromCommand(cmd)
			if err != nil {
				return err
			}
			return cmdPing(ctx, client, os.Stdout)
		},
	}
}

func createProbeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "检查套接字文件类型与权限",
		Action: func(_ context.Context, cmd *cli.Command) error {
			client, err := clientFromCommand(cmd)
			if err != nil {
				return err
			}
			return cmdProbe(client, os.Stdout)
		},
	}
}

// clientFromCommand 从全局选项构造客户端。
func clientFromCommand(cmd *cli.Command) (*Client, error) {
	socketPath := cmd.String("socket")
	timeout := cmd.Duration("timeout")
	if err := validateGlobalArgs(socketPath, timeout); err != nil {
		return nil, err
	}
	return NewClient(socketPath, timeout, cmd.Uint("retries"), cmd.Duration("retry-delay")), nil
}

// validateGlobalArgs 校验全局选项。
func validateGlobalArgs(socketPath string, timeout time.Duration) error {
	if socketPath == "" || socketPath == "@" {
		return &usageError{msg: "套接字路径不能为空"}
	}
	if strings.IndexByte(socketPath, 0) >= 0 {
		return &usageError{msg: "套接字路径不能包含 NUL 字符"}
	}
	if timeout <= 0 || timeout > maxTimeout {
		return &usageError{msg: fmt.Sprintf("超时时间 %s 越界，应在 (0, %s] 之间", timeout, maxTimeout)}
	}
	return nil
}

// sendPayload 组装发送数据：有参数时以空格拼接并补换行，否则读取 stdin。
func sendPayload(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) > 0 {
		return []byte(strings.Join(args, " ") + "\n"), nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinSize+1))
	if err != nil {
		return nil, fmt.Errorf("读取标准输入失败: %w", err)
	}
	if len(data) > maxStdinSize {
		return nil, &usageError{msg: fmt.Sprintf("标准输入超过 %d 字节", maxStdinSize)}
	}
	if len(data) == 0 {
		return nil, &usageError{msg: "send 命令需要数据参数或标准输入"}
	}
	return data, nil
}

// cmdSend 发送数据并将回复原样写到 out。
func cmdSend(ctx context.Context, client *Client, args []string, stdin io.Reader, out io.Writer) error {
	payload, err := sendPayload(args, stdin)
	if err != nil {
		return err
	}
	reply, err := client.Exchange(ctx, payload)
	if len(reply) > 0 {
		if _, werr := out.Write(reply); werr != nil {
			return errors.Join(err, fmt.Errorf("输出回复失败: %w", werr))
		}
	}
	return err
}

// cmdPing 探测服务在线状态。离线时返回 exitError，便于脚本和探针判断。
func cmdPing(ctx context.Context, client *Client, out io.Writer) error {
	rtt, err := client.Ping(ctx)
	if err != nil {
		fmt.Fprintf(out, "状态: 离线\n")
		fmt.Fprintf(out, "套接字: %s\n", client.socketPath)
		fmt.Fprintf(out, "详情: %v\n", err)
		return &exitError{code: 1}
	}
	fmt.Fprintf(out, "状态: 在线\n")
	fmt.Fprintf(out, "套接字: %s\n", client.socketPath)
	fmt.Fprintf(out, "时延: %s\n", rtt.Round(time.Microsecond))
	return nil
}

// cmdProbe 检查套接字文件，不建立连接。
func cmdProbe(client *Client, out io.Writer) error {
	if client.isAbstract() {
		fmt.Fprintf(out, "套接字: %s\n", client.socketPath)
		fmt.Fprintf(out, "类型: 抽象命名空间（无文件）\n")
		return nil
	}
	info, err := client.validateSocket()
	if err != nil {
		fmt.Fprintf(out, "套接字: %s\n", client.socketPath)
		fmt.Fprintf(out, "详情: %v\n", err)
		return &exitError{code: 1}
	}
	fmt.Fprintf(out, "套接字: %s\n", client.socketPath)
	fmt.Fprintf(out, "权限: %s\n", info.Mode())
	if owner, ok := fileOwner(info); ok {
		fmt.Fprintf(out, "属主: %d\n", owner)
	}
	return nil
}

// setupSignalHandler 第一次信号取消 ctx，第二次信号强制退出（130 = 128 + SIGINT）。
func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			cancel()
		}
		<-sigCh
		os.Exit(130)
	}()
}
