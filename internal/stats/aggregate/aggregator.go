// Package aggregate 汇总多次模拟的指标：最终资金与回撤取分位数，其余指标取均值。
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"trade-montecarlo/internal/core/model"
)

// StandardPercentiles 报告使用的分位点
var StandardPercentiles = []float64{0.05, 0.50, 0.95}

// Summary 批次汇总（JSON 输出）
type Summary struct {
	// Runs 模拟次数
	Runs int `json:"runs"`

	// FinalBalanceP5 最终资金 P5
	FinalBalanceP5 float64 `json:"final_balance_p5"`
	// FinalBalanceP50 最终资金 P50
	FinalBalanceP50 float64 `json:"final_balance_p50"`
	// FinalBalanceP95 最终资金 P95
	FinalBalanceP95 float64 `json:"final_balance_p95"`

	// MaxDrawdownPctP5 最大回撤百分比 P5
	MaxDrawdownPctP5 float64 `json:"max_drawdown_pct_p5"`
	// MaxDrawdownPctP50 最大回撤百分比 P50
	MaxDrawdownPctP50 float64 `json:"max_drawdown_pct_p50"`
	// MaxDrawdownPctP95 最大回撤百分比 P95
	MaxDrawdownPctP95 float64 `json:"max_drawdown_pct_p95"`

	AvgWinRate              float64 `json:"avg_win_rate"`
	AvgProfitFactor         float64 `json:"avg_profit_factor"`
	AvgSharpeRatio          float64 `json:"avg_sharpe_ratio"`
	AvgMaxConsecutiveLosses float64 `json:"avg_max_consecutive_losses"`
	AvgRiskRewardRatio      float64 `json:"avg_risk_reward_ratio"`
}

// BatchResult 批次结果（创建后只读）
type BatchResult struct {
	runs []model.SimulationMetrics

	// 升序排序后的序列，仅用于分位数
	sortedFinal    []float64
	sortedDrawdown []float64

	summary Summary
}

// CheckRunCount 校验 n 次模拟能否计算全部标准分位数
// 返回: n=0 时 ErrEmptyBatch；floor(n×p) >= n 时 ErrInsufficientRuns
func CheckRunCount(n int) error {
	if n == 0 {
		return model.ErrEmptyBatch
	}
	if n < 0 {
		return fmt.Errorf("%w: %d", model.ErrInvalidRunCount, n)
	}
	for _, p := range StandardPercentiles {
		if _, err := percentileIndex(n, p); err != nil {
			return err
		}
	}
	return nil
}

// Aggregate 汇总全部模拟指标
// 参数 runs: 按模拟序号排列的指标（会被拷贝）
func Aggregate(runs []model.SimulationMetrics) (*BatchResult, error) {
	if err := CheckRunCount(len(runs)); err != nil {
		return nil, err
	}

	n := len(runs)
	b := &BatchResult{
		runs:           make([]model.SimulationMetrics, n),
		sortedFinal:    make([]float64, n),
		sortedDrawdown: make([]float64, n),
	}
	copy(b.runs, runs)

	var sumWin, sumPF, sumSharpe, sumMCL, sumRR float64
	for i, m := range b.runs {
		b.sortedFinal[i] = m.FinalBalance
		b.sortedDrawdown[i] = m.MaxDrawdownPercent

		sumWin += m.WinRate
		sumPF += m.ProfitFactor
		sumSharpe += m.SharpeRatio
		sumMCL += float64(m.MaxConsecutiveLosses)
		sumRR += m.RiskRewardRatio
	}
	sort.Float64s(b.sortedFinal)
	sort.Float64s(b.sortedDrawdown)

	fn := float64(n)
	b.summary = Summary{
		Runs:                    n,
		AvgWinRate:              sumWin / fn,
		AvgProfitFactor:         sumPF / fn,
		AvgSharpeRatio:          sumSharpe / fn,
		AvgMaxConsecutiveLosses: sumMCL / fn,
		AvgRiskRewardRatio:      sumRR / fn,
	}
	// CheckRunCount 已保证标准分位点不越界
	b.summary.FinalBalanceP5, _ = b.FinalBalancePercentile(0.05)
	b.summary.FinalBalanceP50, _ = b.FinalBalancePercentile(0.50)
	b.summary.FinalBalanceP95, _ = b.FinalBalancePercentile(0.95)
	b.summary.MaxDrawdownPctP5, _ = b.MaxDrawdownPercentile(0.05)
	b.summary.MaxDrawdownPctP50, _ = b.MaxDrawdownPercentile(0.50)
	b.summary.MaxDrawdownPctP95, _ = b.MaxDrawdownPercentile(0.95)

	return b, nil
}

// Len 模拟次数
func (b *BatchResult) Len() int {
	return len(b.runs)
}

// Runs 按模拟序号返回全部指标（拷贝）
func (b *BatchResult) Runs() []model.SimulationMetrics {
	out := make([]model.SimulationMetrics, len(b.runs))
	copy(out, b.runs)
	return out
}

// FinalBalances 按模拟序号返回最终资金
func (b *BatchResult) FinalBalances() []float64 {
	out := make([]float64, len(b.runs))
	for i, m := range b.runs {
		out[i] = m.FinalBalance
	}
	return out
}

// Summary 返回批次汇总
func (b *BatchResult) Summary() Summary {
	return b.summary
}

// FinalBalancePercentile 最终资金分位数
// 取升序序列中下标 floor(N×p) 的值
func (b *BatchResult) FinalBalancePercentile(p float64) (float64, error) {
	return pick(b.sortedFinal, p)
}

// MaxDrawdownPercentile 最大回撤百分比分位数
func (b *BatchResult) MaxDrawdownPercentile(p float64) (float64, error) {
	return pick(b.sortedDrawdown, p)
}

func pick(sorted []float64, p float64) (float64, error) {
	idx, err := percentileIndex(len(sorted), p)
	if err != nil {
		return 0, err
	}
	return sorted[idx], nil
}

// percentileIndex 计算分位数下标 floor(n×p)
func percentileIndex(n int, p float64) (int, error) {
	if n == 0 {
		return 0, model.ErrEmptyBatch
	}
	if p < 0 || math.IsNaN(p) {
		return 0, fmt.Errorf("%w: p=%v", model.ErrInsufficientRuns, p)
	}
	idx := int(math.Floor(float64(n) * p))
	if idx >= n {
		return 0, fmt.Errorf("%w: n=%d p=%v 下标=%d", model.ErrInsufficientRuns, n, p, idx)
	}
	return idx, nil
}
