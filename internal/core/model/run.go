package model

// DistributionParameters 由历史交易拟合的正态分布参数
type DistributionParameters struct {
	// Mean 历史盈亏均值
	Mean float64 `json:"mean"`
	// StdDev 样本标准差（n-1 分母）
	StdDev float64 `json:"std_dev"`
}

// SimulationRun 单次模拟的轨迹
// 仅在一次模拟内存在，计算完指标后即丢弃。
type SimulationRun struct {
	// StartingBalance 初始资金
	StartingBalance float64
	// Outcomes 抽样得到的交易盈亏序列
	Outcomes []float64
	// Balances 每笔交易后的资金（与 Outcomes 等长）
	Balances []float64
}

// FinalBalance 最终资金
// 无交易时返回初始资金
func (r SimulationRun) FinalBalance() float64 {
	if len(r.Balances) == 0 {
		return r.StartingBalance
	}
	return r.Balances[len(r.Balances)-1]
}
