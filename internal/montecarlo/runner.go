// Package montecarlo 串联分布拟合、模拟引擎、指标计算与批次汇总。
//
// map 阶段由固定数量的 worker 并行执行，每次模拟持有独立随机源并写入
// 各自的结果槽位；reduce 阶段在全部模拟完成后只读地汇总结果。
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trade-montecarlo/internal/core/model"
	"trade-montecarlo/internal/core/simulate"
	"trade-montecarlo/internal/observability"
	"trade-montecarlo/internal/stats/aggregate"
	"trade-montecarlo/internal/stats/distribution"
	"trade-montecarlo/internal/stats/riskmetrics"
)

// DefaultSimulations 默认模拟次数
const DefaultSimulations = 1000

// RunSink 接收每次模拟的指标（按模拟序号顺序调用）
type RunSink interface {
	WriteRun(index int, m model.SimulationMetrics) error
}

// Options 运行参数
type Options struct {
	// Workers 并行 worker 数，<=0 时使用 runtime.NumCPU()
	Workers int
	// Seed 批次种子，0 表示随机生成（会写入日志与结果，便于复现）
	Seed uint64
	// Metrics Prometheus 指标，可为 nil
	Metrics *observability.Metrics
	// Sink 逐次模拟输出，可为 nil
	Sink RunSink
}

// Result 一个批次的模拟结果
type Result struct {
	*aggregate.BatchResult

	// Params 拟合得到的分布参数
	Params model.DistributionParameters
	// Seed 实际使用的批次种子
	Seed uint64
}

// Runner 蒙特卡洛模拟执行器
type Runner struct {
	opts   Options
	logger *zap.Logger
}

// New 创建执行器
// 参数 logger: 可为 nil
func New(opts Options, logger *zap.Logger) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, logger: logger}
}

// RunSimulations 使用默认参数执行 numSimulations 次模拟
func RunSimulations(ledger model.TradeLedger, numSimulations int) (*Result, error) {
	return New(Options{}, nil).Run(context.Background(), ledger, numSimulations)
}

// Run 执行一个批次
// 输入错误（空账本、资金非正、样本不足、模拟次数无效）在任何模拟开始前返回。
// ctx 取消后不再派发新的模拟，并返回 ctx.Err()。
func (r *Runner) Run(ctx context.Context, ledger model.TradeLedger, numSimulations int) (*Result, error) {
	start := time.Now()
	res, err := r.run(ctx, ledger, numSimulations)

	switch {
	case err == nil:
		s := res.Summary()
		r.opts.Metrics.ObserveBatch("ok", time.Since(start), &s)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.opts.Metrics.ObserveBatch("canceled", time.Since(start), nil)
	default:
		r.opts.Metrics.ObserveBatch("error", time.Since(start), nil)
	}
	return res, err
}

func (r *Runner) run(ctx context.Context, ledger model.TradeLedger, n int) (*Result, error) {
	if err := aggregate.CheckRunCount(n); err != nil {
		return nil, err
	}

	params, err := distribution.Estimate(ledger)
	if err != nil {
		return nil, err
	}

	seed := r.opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	workers := r.opts.Workers
	if workers > n {
		workers = n
	}

	r.logger.Info("开始蒙特卡洛模拟",
		zap.Int("runs", n),
		zap.Int("trades_per_run", ledger.Len()),
		zap.Int("workers", workers),
		zap.Uint64("seed", seed),
		zap.Float64("mean", params.Mean),
		zap.Float64("std_dev", params.StdDev),
		zap.Float64("starting_balance", ledger.StartingBalance()),
	)

	results, err := r.mapRuns(ctx, params, ledger.StartingBalance(), ledger.Len(), n, workers, seed)
	if err != nil {
		return nil, err
	}

	if r.opts.Sink != nil {
		for i, m := range results {
			if err := r.opts.Sink.WriteRun(i, m); err != nil {
				return nil, fmt.Errorf("输出第 %d 次模拟失败: %w", i+1, err)
			}
		}
	}

	batch, err := aggregate.Aggregate(results)
	if err != nil {
		return nil, err
	}

	s := batch.Summary()
	r.logger.Info("蒙特卡洛模拟完成",
		zap.Int("runs", s.Runs),
		zap.Float64("final_balance_p5", s.FinalBalanceP5),
		zap.Float64("final_balance_p50", s.FinalBalanceP50),
		zap.Float64("final_balance_p95", s.FinalBalanceP95),
		zap.Float64("max_drawdown_pct_p95", s.MaxDrawdownPctP95),
	)

	return &Result{BatchResult: batch, Params: params, Seed: seed}, nil
}

// mapRuns 并行执行 n 次模拟，results[i] 只由处理第 i 次模拟的 worker 写入
func (r *Runner) mapRuns(ctx context.Context, params model.DistributionParameters, startingBalance float64, length, n, workers int, seed uint64) ([]model.SimulationMetrics, error) {
	results := make([]model.SimulationMetrics, n)
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				t0 := time.Now()
				run := simulate.Simulate(params, startingBalance, length, simulate.NewRunSource(seed, i))
				m := riskmetrics.Compute(run)
				if m.TotalTrades != length {
					return fmt.Errorf("内部错误: 第 %d 次模拟交易笔数 %d != %d", i+1, m.TotalTrades, length)
				}
				results[i] = m

				r.opts.Metrics.ObserveRun(time.Since(t0), m.FinalBalance)
				if ce := r.logger.Check(zap.DebugLevel, "模拟完成"); ce != nil {
					ce.Write(zap.Int("run", i+1), zap.Float64("final_balance", m.FinalBalance), zap.Float64("max_drawdown_pct", m.MaxDrawdownPercent))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
