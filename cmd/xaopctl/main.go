// xaopctl 是 xaop 拦截日志引擎的命令行工具。
//
// 用法:
//
//	xaopctl <命令> [命令参数]
//
// 命令:
//
//	render     用给定的占位符值渲染消息模板
//	check      校验配置文件并打印生效的级别与模板
//	demo       用 xlog 输出一次被拦截调用的完整日志
//
// 退出码:
//
//	0: 成功
//	1: 执行失败（配置无效、demo 调用失败等）
//	2: 参数错误
//
// 示例:
//
//	xaopctl render -t "Entering [{method}]" --set method="void foo()"
//	xaopctl check ./xaop.yaml
//	xaopctl demo --level trace --format json --fail
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息，通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// exitError 命令已完成输出，只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 参数错误，退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{err: err}
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:         "xaopctl",
		Usage:        "xaop 拦截日志引擎工具",
		Version:      fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:       stdout,
		ErrWriter:    stderr,
		OnUsageError: onUsageError,
		Commands: []*cli.Command{
			createRenderCommand(),
			createCheckCommand(),
			createDemoCommand(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() > 0 {
				return usageErrorf("unknown command %q", cmd.Args().First())
			}
			return usageErrorf("missing command, run 'xaopctl --help'")
		},
		// 禁止 urfave/cli 直接 os.Exit，退出码统一由 run 映射
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// run 执行命令并返回退出码。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := createApp(stdout, stderr).Run(ctx, args)
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return 1
}
