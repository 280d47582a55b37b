// xsockctl 是本地认证套接字服务的命令行客户端，用于联调与诊断。
//
// 用法:
//
//	xsockctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-s, --socket       套接字路径 (默认: /var/run/xsock.sock)，以 @ 开头表示抽象命名空间
//	-t, --timeout      命令超时时间 (默认: 10s, 上限: 5m)
//	-r, --retries      连接重试次数 (默认: 3)
//	    --retry-delay  重试间隔 (默认: 100ms)
//
// 命令:
//
//	send [数据...]  发送数据并打印服务端回复，无参数时从标准输入读取
//	ping            发送探测数据并测量往返时延
//	probe           检查套接字文件类型与权限
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（连接失败、服务离线、对端关闭等）
//	2: 参数错误（缺少参数、未知命令、超时越界等）
//
// 示例:
//
//	xsockctl send hello                   # 发送一行数据
//	echo hello | xsockctl send            # 从标准输入发送
//	xsockctl -s /tmp/app.sock ping        # 使用自定义路径
//	xsockctl -s @xsockd ping              # 抽象命名空间
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

const (
	// defaultSocketPath 默认套接字路径。
	defaultSocketPath = "/var/run/xsock.sock"

	// defaultTimeout 默认超时时间。
	defaultTimeout = 10 * time.Second

	// maxTimeout 超时时间上限。
	maxTimeout = 5 * time.Minute

	// defaultRetries 默认连接重试次数。
	defaultRetries = 3

	// defaultRetryDelay 默认重试间隔。
	defaultRetryDelay = 100 * time.Millisecond
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xsockctl",
		Usage:   "本地认证套接字服务命令行客户端",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "socket",
				Aliases: []string{"s"},
				Usage:   "套接字路径，以 @ 开头表示抽象命名空间",
				Value:   defaultSocketPath,
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "命令超时时间",
				Value:   defaultTimeout,
			},
			&cli.UintFlag{
				Name:    "retries",
				Aliases: []string{"r"},
				Usage:   "连接重试次数",
				Value:   defaultRetries,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "连接重试间隔",
				Value: defaultRetryDelay,
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		Authors: []any{
			"XIPC Team",
		},
		// 退出码统一由 run() 映射，禁止框架直接 os.Exit。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

// run 运行应用并返回退出码。
func run(args []string) int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(ctx, cancel)

	return exitCode(app.Run(ctx, args))
}

// exitCode 将命令错误映射为退出码。
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		// flag 解析器已输出错误详情
		return 2
	}
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return 1
}
