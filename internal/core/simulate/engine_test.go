// Package simulate 模拟引擎测试
package simulate

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-montecarlo/internal/core/model"
)

// fixedSource 按顺序返回预设的标准正态值
type fixedSource struct {
	vals []float64
	pos  int
}

func (s *fixedSource) NormFloat64() float64 {
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	return v
}

func TestSimulate_FixedSequence(t *testing.T) {
	params := model.DistributionParameters{Mean: 10, StdDev: 2}
	src := &fixedSource{vals: []float64{0, 1, -1, 0.5}}

	run := Simulate(params, 1000, 4, src)

	wantOutcomes := []float64{10, 12, 8, 11}
	wantBalances := []float64{1010, 1022, 1030, 1041}
	for i := range wantOutcomes {
		if run.Outcomes[i] != wantOutcomes[i] {
			t.Fatalf("Outcomes[%d]=%v, want %v", i, run.Outcomes[i], wantOutcomes[i])
		}
		if run.Balances[i] != wantBalances[i] {
			t.Fatalf("Balances[%d]=%v, want %v", i, run.Balances[i], wantBalances[i])
		}
	}
	if run.FinalBalance() != 1041 {
		t.Fatalf("FinalBalance=%v, want 1041", run.FinalBalance())
	}
}

func TestSimulate_ZeroStdDev(t *testing.T) {
	params := model.DistributionParameters{Mean: 3.5, StdDev: 0}
	src := &fixedSource{vals: []float64{100}}

	run := Simulate(params, 50, 10, src)
	for i, o := range run.Outcomes {
		if o != 3.5 {
			t.Fatalf("Outcomes[%d]=%v, want 3.5", i, o)
		}
	}
	if src.pos != 0 {
		t.Fatalf("随机源被消耗 %d 次, want 0", src.pos)
	}
	if math.Abs(run.FinalBalance()-85) > 1e-9 {
		t.Fatalf("FinalBalance=%v, want 85", run.FinalBalance())
	}
}

func TestSimulate_ZeroLength(t *testing.T) {
	run := Simulate(model.DistributionParameters{Mean: 1, StdDev: 1}, 100, 0, NewRunSource(1, 0))
	if len(run.Outcomes) != 0 || run.FinalBalance() != 100 {
		t.Fatalf("len=%d FinalBalance=%v, want 0/100", len(run.Outcomes), run.FinalBalance())
	}
}

func TestNewRunSource_IndependentStreams(t *testing.T) {
	params := model.DistributionParameters{Mean: 0, StdDev: 1}
	a := Simulate(params, 100, 20, NewRunSource(7, 0))
	b := Simulate(params, 100, 20, NewRunSource(7, 1))

	same := true
	for i := range a.Outcomes {
		if a.Outcomes[i] != b.Outcomes[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("run 0 与 run 1 的抽样序列相同")
	}
}

// **Feature: trade-montecarlo, Property: Simulation Determinism**

func TestSimulate_Deterministic_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("相同参数与相同随机序列产生相同轨迹", prop.ForAll(
		func(mean, sd float64, seed uint64, run int) bool {
			params := model.DistributionParameters{Mean: mean, StdDev: sd}
			a := Simulate(params, 10000, 50, NewRunSource(seed, run))
			b := Simulate(params, 10000, 50, NewRunSource(seed, run))
			for i := range a.Outcomes {
				if a.Outcomes[i] != b.Outcomes[i] || a.Balances[i] != b.Balances[i] {
					return false
				}
			}
			return len(a.Outcomes) == 50
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(0, 100),
		gen.UInt64(),
		gen.IntRange(0, 10000),
	))

	properties.Property("资金轨迹等于初始资金加累计盈亏", prop.ForAll(
		func(mean, sd float64, seed uint64) bool {
			params := model.DistributionParameters{Mean: mean, StdDev: sd}
			r := Simulate(params, 1000, 30, NewRunSource(seed, 0))
			balance := 1000.0
			for i, o := range r.Outcomes {
				balance += o
				if r.Balances[i] != balance {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-50, 50),
		gen.Float64Range(0, 50),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
