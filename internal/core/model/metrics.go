package model

// SimulationMetrics 单次模拟的绩效与风险指标（只读值）
type SimulationMetrics struct {
	// FinalBalance 最终资金
	FinalBalance float64 `json:"final_balance"`
	// MaxDrawdown 最大回撤（绝对值）
	MaxDrawdown float64 `json:"max_drawdown"`
	// MaxDrawdownPercent 最大回撤百分比
	// 计算公式: 100 × MaxDrawdown / 本次模拟的峰值资金
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"`
	// GrossProfit 盈利交易总和
	GrossProfit float64 `json:"gross_profit"`
	// GrossLoss 亏损交易绝对值总和
	GrossLoss float64 `json:"gross_loss"`
	// ProfitFactor 盈利因子 = GrossProfit / GrossLoss（GrossLoss 为 0 时为 0）
	ProfitFactor float64 `json:"profit_factor"`
	// TotalTrades 交易笔数
	TotalTrades int `json:"total_trades"`
	// WinRate 胜率（0-100）
	WinRate float64 `json:"win_rate"`
	// SharpeRatio 年化夏普比率（× sqrt(252)）
	SharpeRatio float64 `json:"sharpe_ratio"`
	// MaxConsecutiveLosses 最大连续亏损笔数
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`
	// AverageWin 平均盈利
	AverageWin float64 `json:"average_win"`
	// AverageLoss 平均亏损（绝对值）
	AverageLoss float64 `json:"average_loss"`
	// RiskRewardRatio 盈亏比 = AverageWin / AverageLoss（AverageLoss 为 0 时为 0）
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
}
