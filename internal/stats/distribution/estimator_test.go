// Package distribution 分布拟合测试
package distribution

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-montecarlo/internal/core/model"
)

func TestEstimate_KnownValues(t *testing.T) {
	// mean=5, Σ(x-mean)²=32, n-1=7 => sd=sqrt(32/7)
	ledger := model.NewTradeLedger([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 1000)

	params, err := Estimate(ledger)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, params.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), params.StdDev, 1e-12)
}

func TestEstimate_Errors(t *testing.T) {
	_, err := Estimate(model.NewTradeLedger(nil, 1000))
	assert.ErrorIs(t, err, model.ErrEmptyLedger)

	_, err = Estimate(model.NewTradeLedger([]float64{1, 2}, 0))
	assert.ErrorIs(t, err, model.ErrInvalidBalance)

	// 单笔交易：n-1=0，必须返回错误而不是 NaN
	params, err := Estimate(model.NewTradeLedger([]float64{42}, 1000))
	assert.ErrorIs(t, err, model.ErrInsufficientData)
	assert.False(t, math.IsNaN(params.StdDev))
}

func TestEstimate_IdenticalOutcomes(t *testing.T) {
	params, err := Estimate(model.NewTradeLedger([]float64{3, 3, 3, 3}, 100))
	require.NoError(t, err)
	assert.Equal(t, 3.0, params.Mean)
	assert.Equal(t, 0.0, params.StdDev)
}

func TestSampleStdDev_Short(t *testing.T) {
	_, ok := SampleStdDev([]float64{1}, 1)
	assert.False(t, ok)
	_, ok = SampleStdDev(nil, 0)
	assert.False(t, ok)
	assert.Equal(t, 0.0, Mean(nil))
}

func TestEstimate_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("均值落在 [min,max]，标准差非负且有限", prop.ForAll(
		func(xs []float64) bool {
			if len(xs) < 2 {
				return true
			}
			params, err := Estimate(model.NewTradeLedger(xs, 1000))
			if err != nil {
				return false
			}
			lo, hi := xs[0], xs[0]
			for _, x := range xs {
				lo = math.Min(lo, x)
				hi = math.Max(hi, x)
			}
			if params.Mean < lo-1e-9 || params.Mean > hi+1e-9 {
				return false
			}
			return params.StdDev >= 0 && !math.IsNaN(params.StdDev) && !math.IsInf(params.StdDev, 0)
		},
		gen.SliceOfN(25, gen.Float64Range(-5000, 5000)),
	))

	properties.TestingRun(t)
}
