// Package distribution 从历史交易拟合正态分布参数（均值、样本标准差）。
package distribution

import (
	"fmt"
	"math"

	"trade-montecarlo/internal/core/model"
)

// Estimate 拟合历史交易的分布参数
// mean = Σx / n
// stdDev = sqrt(Σ(x-mean)² / (n-1))
// 返回: 账本无效时返回 ErrEmptyLedger / ErrInvalidBalance；n<2 时返回 ErrInsufficientData
func Estimate(ledger model.TradeLedger) (model.DistributionParameters, error) {
	if err := ledger.Validate(); err != nil {
		return model.DistributionParameters{}, err
	}

	outcomes := ledger.Outcomes()
	mean := Mean(outcomes)
	sd, ok := SampleStdDev(outcomes, mean)
	if !ok {
		return model.DistributionParameters{}, fmt.Errorf("%w: 需要至少 2 笔，当前 %d 笔", model.ErrInsufficientData, len(outcomes))
	}

	return model.DistributionParameters{Mean: mean, StdDev: sd}, nil
}

// Mean 算术平均，空序列返回 0
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev 样本标准差（n-1 分母）
// 第二个返回值为 false 表示 n<2，分母为 0，结果无定义。
func SampleStdDev(xs []float64, mean float64) (float64, bool) {
	n := len(xs)
	if n < 2 {
		return 0, false
	}
	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1)), true
}
