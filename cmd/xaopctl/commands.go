package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/omeyang/xaop/pkg/config/xconf"
	"github.com/omeyang/xaop/pkg/observability/xaop"
	"github.com/omeyang/xaop/pkg/observability/xlog"
	"github.com/omeyang/xaop/pkg/observability/xmetrics"
)

// defaultConfigPath 配置文件中 xaop 配置所在的节点。
const defaultConfigPath = "xaop"

func createRenderCommand() *cli.Command {
	return &cli.Command{
		Name:         "render",
		Usage:        "渲染消息模板",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "消息模板，如 \"Entering [{method}]\"",
			},
			&cli.StringSliceFlag{
				Name:    "set",
				Aliases: []string{"s"},
				Usage:   "占位符取值 key=value，可重复",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if !cmd.IsSet("template") {
				return usageErrorf("render requires --template")
			}
			return cmdRender(cmd.Root().Writer, cmd.String("template"), cmd.StringSlice("set"))
		},
	}
}

func cmdRender(w io.Writer, template string, pairs []string) error {
	reg := xaop.NewRegistry()
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return usageErrorf("invalid --set %q, want key=value", pair)
		}
		reg.Register(key, func() string { return value })
	}
	_, err := fmt.Fprintln(w, xaop.Render(template, reg))
	return err
}

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:         "check",
		Usage:        "校验配置文件",
		ArgsUsage:    "<file>",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "xaop 配置所在节点",
				Value: defaultConfigPath,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return usageErrorf("check requires exactly one config file")
			}
			return cmdCheck(cmd.Root().Writer, cmd.Args().First(), cmd.String("path"))
		},
	}
}

func cmdCheck(w io.Writer, file, path string) error {
	cfg, err := loadConfig(file, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "enabled: %t\n", cfg.Enabled)
	fmt.Fprintf(w, "version: %d\n", cfg.Version)
	for _, kind := range []xaop.EventKind{xaop.EventEntering, xaop.EventExited, xaop.EventExitedAbnormally, xaop.EventElapsed} {
		ev := cfg.Event(kind)
		fmt.Fprintf(w, "%-18s %-5s %s\n", kind, ev.Level, ev.Message)
	}
	_, err = fmt.Fprintf(w, "ignore-errors: %d\n", len(cfg.IgnoreErrors))
	return err
}

func loadConfig(file, path string) (xaop.Config, error) {
	c, err := xconf.New(file)
	if err != nil {
		return xaop.Config{}, err
	}
	return xaop.LoadConfig(c, path)
}

func createDemoCommand() *cli.Command {
	return &cli.Command{
		Name:         "demo",
		Usage:        "输出一次被拦截调用的日志",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "xaop 配置文件"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "xlog 根级别", Value: "debug"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "输出格式 text|json", Value: "text"},
			&cli.StringFlag{Name: "log-file", Usage: "写入轮转日志文件而不是标准输出"},
			&cli.BoolFlag{Name: "fail", Usage: "让示例调用返回错误"},
			&cli.BoolFlag{Name: "trace", Usage: "开启 OpenTelemetry span 与调用指标"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdDemo(ctx, cmd.Root().Writer, demoOptions{
				configFile: cmd.String("config"),
				level:      cmd.String("level"),
				format:     cmd.String("format"),
				logFile:    cmd.String("log-file"),
				fail:       cmd.Bool("fail"),
				trace:      cmd.Bool("trace"),
			})
		},
	}
}

type demoOptions struct {
	configFile string
	level      string
	format     string
	logFile    string
	fail       bool
	trace      bool
}

// errDivideByZero 示例调用在 --fail 时返回的错误。
var errDivideByZero = errors.New("division by zero")

func divide(_ context.Context, a, b int) (int, error) {
	if b == 0 {
		return 0, errDivideByZero
	}
	return a / b, nil
}

func cmdDemo(ctx context.Context, w io.Writer, opts demoOptions) (err error) {
	builder := xlog.New().SetOutput(w).SetLevelString(opts.level).SetFormat(opts.format)
	if opts.logFile != "" {
		builder = builder.SetRotation(opts.logFile)
	}
	logger, cleanup, err := builder.Build()
	if err != nil {
		return usageErrorf("%v", err)
	}
	defer func() { err = errors.Join(err, cleanup()) }()

	engineOpts := []xaop.Option{
		xaop.WithOnError(func(err error) {
			logger.Error(ctx, "xaop internal fault", xlog.Err(err))
		}),
	}
	if opts.configFile != "" {
		cfg, err := loadConfig(opts.configFile, defaultConfigPath)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, xaop.WithConfig(cfg))
	}

	var reader *sdkmetric.ManualReader
	if opts.trace {
		tp := sdktrace.NewTracerProvider()
		reader = sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() {
			err = errors.Join(err, tp.Shutdown(context.WithoutCancel(ctx)), mp.Shutdown(context.WithoutCancel(ctx)))
		}()
		obs, err := xmetrics.NewOTelObserver(xmetrics.WithTracerProvider(tp), xmetrics.WithMeterProvider(mp))
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, xaop.WithObserver(obs))
	}

	engine, err := xaop.New(xaop.NewLogSink(logger), engineOpts...)
	if err != nil {
		return err
	}

	a, b := 10, 2
	if opts.fail {
		b = 0
	}
	inv := &xaop.Invocation{
		Signature: xaop.SignatureOf("xaopctl.demo", "Divide", divide),
		Args:      []xaop.Arg{{Name: "a", Value: a}, {Name: "b", Value: b}},
	}
	_, callErr := xaop.Around(ctx, engine, nil, inv, func(ctx context.Context) (int, error) {
		return divide(ctx, a, b)
	})

	if reader != nil {
		calls, err := countCalls(ctx, reader)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "calls recorded: %d\n", calls)
	}
	if opts.logFile != "" {
		fmt.Fprintf(w, "logs written to %s\n", opts.logFile)
	}
	if callErr != nil {
		return &exitError{code: 1}
	}
	return nil
}

// countCalls 读取 xaop.call.total 的累计值。
func countCalls(ctx context.Context, reader *sdkmetric.ManualReader) (int64, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return 0, err
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if m.Name != "xaop.call.total" || !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total, nil
}
