// Package riskmetrics 由单次模拟轨迹计算绩效与风险指标。
// 回撤、最大连续亏损依赖交易顺序；其余指标只依赖盈亏集合。
package riskmetrics

import (
	"math"

	"trade-montecarlo/internal/core/model"
	"trade-montecarlo/internal/stats/distribution"
)

// TradingDaysPerYear 夏普比率年化常数
const TradingDaysPerYear = 252

// Compute 计算单次模拟的全部指标
// 参数 run: 模拟轨迹（Outcomes 按时间顺序）
// 返回: 不可变的指标值
func Compute(run model.SimulationRun) model.SimulationMetrics {
	outcomes := run.Outcomes
	n := len(outcomes)

	maxDD, peak := drawdown(run.StartingBalance, outcomes)

	var grossProfit, grossLoss float64
	var wins, losses int
	for _, o := range outcomes {
		if o > 0 {
			grossProfit += o
			wins++
		} else if o < 0 {
			grossLoss += -o
			losses++
		}
	}

	avgWin := ratio(grossProfit, float64(wins))
	avgLoss := ratio(grossLoss, float64(losses))

	return model.SimulationMetrics{
		FinalBalance:         run.FinalBalance(),
		MaxDrawdown:          maxDD,
		MaxDrawdownPercent:   100 * ratio(maxDD, peak),
		GrossProfit:          grossProfit,
		GrossLoss:            grossLoss,
		ProfitFactor:         ratio(grossProfit, grossLoss),
		TotalTrades:          n,
		WinRate:              100 * ratio(float64(wins), float64(n)),
		SharpeRatio:          sharpe(outcomes),
		MaxConsecutiveLosses: maxConsecutiveLosses(outcomes),
		AverageWin:           avgWin,
		AverageLoss:          avgLoss,
		RiskRewardRatio:      ratio(avgWin, avgLoss),
	}
}

// drawdown 沿交易顺序计算最大回撤
// peak 初始为起始资金，currentDrawdown = peak - balance（balance < peak 时），否则为 0。
// 返回: 最大回撤与遍历结束时的峰值资金
func drawdown(startingBalance float64, outcomes []float64) (maxDD float64, peak float64) {
	balance := startingBalance
	peak = startingBalance
	for _, o := range outcomes {
		balance += o
		if balance > peak {
			peak = balance
		}
		cur := 0.0
		if balance < peak {
			cur = peak - balance
		}
		if cur > maxDD {
			maxDD = cur
		}
	}
	return maxDD, peak
}

// sharpe 年化夏普比率 = mean / sd × sqrt(252)
// sd 为 0 或样本不足 2 笔时返回 0
func sharpe(returns []float64) float64 {
	mean := distribution.Mean(returns)
	sd, ok := distribution.SampleStdDev(returns, mean)
	if !ok || sd == 0 {
		return 0
	}
	return (mean / sd) * math.Sqrt(TradingDaysPerYear)
}

// maxConsecutiveLosses 最长连续亏损
// 仅严格负值计入连亏；非负值（包括 0）重置计数，并在重置时与最大值比较。
// 序列末尾未被重置的连亏不参与比较。
func maxConsecutiveLosses(outcomes []float64) int {
	maxStreak := 0
	streak := 0
	for _, o := range outcomes {
		if o < 0 {
			streak++
			continue
		}
		if streak > maxStreak {
			maxStreak = streak
		}
		streak = 0
	}
	return maxStreak
}

// ratio 安全除法，分母为 0 时返回 0
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
