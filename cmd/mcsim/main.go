// Package main 是蒙特卡洛交易风险模拟器的入口点。
// 从 MT5 策略测试报表提取历史交易，拟合正态分布后生成大量模拟资金曲线，
// 并输出最终资金与最大回撤的分位数以及平均风险指标。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trade-montecarlo/internal/config"
	"trade-montecarlo/internal/ingest/mt5"
	"trade-montecarlo/internal/montecarlo"
	"trade-montecarlo/internal/observability"
	"trade-montecarlo/internal/output/jsonl"
	"trade-montecarlo/internal/output/report"
)

func main() {
	var (
		configPath string
		reportPath string
		sheet      string
		numSims    int
		seed       uint64
	)
	flag.StringVar(&configPath, "config", "config.yaml", "配置文件路径，为空时只使用默认值与环境变量")
	flag.StringVar(&reportPath, "report", "", "MT5 报表路径（覆盖 input.report_path）")
	flag.StringVar(&sheet, "sheet", "", "工作表名称（覆盖 input.sheet）")
	flag.IntVar(&numSims, "n", 0, "模拟次数（覆盖 simulation.num_simulations）")
	flag.Uint64Var(&seed, "seed", 0, "随机种子（覆盖 simulation.seed）")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.FromEnv()
	} else {
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "report":
			cfg.Input.ReportPath = reportPath
		case "sheet":
			cfg.Input.Sheet = sheet
		case "n":
			cfg.Simulation.NumSimulations = numSims
		case "seed":
			cfg.Simulation.Seed = seed
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "配置验证失败: %v\n", err)
		os.Exit(1)
	}
	if cfg.Input.ReportPath == "" {
		fmt.Fprintln(os.Stderr, "未指定报表路径（-report 或 input.report_path）")
		os.Exit(1)
	}

	logger := newLogger(cfg.App.LogLevel).With(zap.String("app", cfg.App.Name))
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 捕获 SIGINT/SIGTERM，停止派发新的模拟
	sigCh := make(chan os.Signal, 2)
	ossignal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("收到退出信号，取消模拟")
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("模拟已取消")
		} else {
			logger.Error("模拟失败", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (err error) {
	rep, err := mt5.LoadReport(cfg.Input.ReportPath, cfg.Input.Sheet)
	if err != nil {
		return err
	}
	ledger := rep.Ledger()
	logger.Info("报表解析完成",
		zap.String("path", cfg.Input.ReportPath),
		zap.Int("trades", ledger.Len()),
		zap.Float64("initial_balance", ledger.StartingBalance()),
	)

	metrics := observability.NewMetrics("trade_montecarlo")
	opts := montecarlo.Options{
		Workers: cfg.Simulation.Workers,
		Seed:    cfg.Simulation.Seed,
		Metrics: metrics,
	}

	var runsWriter *jsonl.Writer
	if cfg.Output.RunsEnabled || cfg.Output.SummaryEnabled {
		runsWriter, err = jsonl.NewWriter(cfg.RunsPath(), cfg.Output.BufferSize)
		if err != nil {
			return fmt.Errorf("创建 runs writer 失败: %w", err)
		}
		defer func() {
			err = multierr.Append(err, runsWriter.Close())
		}()
		if cfg.Output.RunsEnabled {
			opts.Sink = runsWriter
		}
	}

	res, err := montecarlo.New(opts, logger).Run(ctx, ledger, cfg.Simulation.NumSimulations)
	if err != nil {
		return err
	}

	if runsWriter != nil && cfg.Output.SummaryEnabled {
		err = multierr.Append(err, runsWriter.WriteSummary(res.Seed, res.Params, res.Summary()))
	}
	if path := cfg.Output.MetricsTextfile; path != "" {
		if werr := metrics.WriteTextfile(path); werr != nil {
			err = multierr.Append(err, fmt.Errorf("写入 metrics textfile 失败: %w", werr))
		} else {
			logger.Info("metrics 已写入", zap.String("path", path))
		}
	}

	rerr := report.Write(os.Stdout, report.Options{
		PrintTrades: cfg.Input.PrintTrades,
		PrintRuns:   cfg.Output.PrintRuns,
	}, ledger, rep.Trades, res)
	return multierr.Append(err, rerr)
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
