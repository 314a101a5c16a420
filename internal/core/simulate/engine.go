// Package simulate 按拟合的正态分布生成合成交易序列，并在初始资金上回放。
// 每次模拟持有独立的随机源，模拟之间不共享任何可变状态。
package simulate

import (
	"math/rand/v2"

	"trade-montecarlo/internal/core/model"
)

// NormalSource 标准正态随机源
// *rand.Rand 满足该接口；测试中可注入固定序列。
type NormalSource interface {
	NormFloat64() float64
}

// NewRunSource 为第 run 次模拟创建独立的随机源
// 同一 seed 下不同 run 使用不同的 PCG 流，结果与 worker 调度顺序无关。
// 参数 seed: 批次种子
// 参数 run: 模拟序号（从 0 开始）
func NewRunSource(seed uint64, run int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(run)))
}

// Simulate 执行一次模拟
// 参数 params: 分布参数
// 参数 startingBalance: 初始资金
// 参数 length: 交易笔数（等于历史账本长度）
// 参数 src: 本次模拟独占的随机源
// 返回: 抽样序列与资金轨迹
func Simulate(params model.DistributionParameters, startingBalance float64, length int, src NormalSource) model.SimulationRun {
	if length < 0 {
		length = 0
	}
	run := model.SimulationRun{
		StartingBalance: startingBalance,
		Outcomes:        make([]float64, length),
		Balances:        make([]float64, length),
	}

	balance := startingBalance
	for i := 0; i < length; i++ {
		outcome := params.Mean
		// 标准差为 0 时每次抽样都等于均值，不消耗随机源
		if params.StdDev != 0 {
			outcome = params.Mean + params.StdDev*src.NormFloat64()
		}
		balance += outcome
		run.Outcomes[i] = outcome
		run.Balances[i] = balance
	}
	return run
}
