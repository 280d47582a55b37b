// xsockd 是基于 xsock 的示例守护进程：在本地套接字上按行回显，
// 只接受与自身同 uid 或 root 的对端。
//
// 用法:
//
//	xsockd --config /etc/xsockd/xsockd.yaml
//
// 配置文件见 daemonConfig。修改 log.level 后无需重启即生效，
// 其余字段需要重启。
//
// 协议: 客户端每发送一行，服务端回复同一行；发送 whoami 时回复对端身份。
//
// 退出码:
//
//	0: 收到 SIGINT/SIGTERM 后正常退出
//	1: 启动或退出过程出错
//	2: 参数错误
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stderr))
}

func createApp(stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "xsockd",
		Usage:   "本地认证套接字示例守护进程",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "配置文件路径（.yaml/.yml/.json）",
				Required: true,
			},
		},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := newDaemon(cmd.String("config"), stderr)
			if err != nil {
				return err
			}
			return d.run(ctx)
		},
	}
}

// run 运行守护进程直到收到退出信号，返回退出码。
func run(ctx context.Context, args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := createApp(stderr).Run(ctx, args)
	switch {
	case err == nil:
		return 0
	case isUsageError(err):
		fmt.Fprintf(stderr, "参数错误: %v\n", err)
		return 2
	default:
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
}

// isUsageError 判断是否为 CLI 参数错误。
func isUsageError(err error) bool {
	msg := err.Error()
	for _, m := range []string{"Required flag", "flag provided but not defined", "flag needs an argument"} {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
