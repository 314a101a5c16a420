// Package model 账本测试
package model

import (
	"errors"
	"math"
	"testing"
)

func TestTradeLedger_Validate(t *testing.T) {
	cases := []struct {
		name    string
		ledger  TradeLedger
		wantErr error
	}{
		{"empty", NewTradeLedger(nil, 1000), ErrEmptyLedger},
		{"zero balance", NewTradeLedger([]float64{1, 2}, 0), ErrInvalidBalance},
		{"negative balance", NewTradeLedger([]float64{1, 2}, -5), ErrInvalidBalance},
		{"nan balance", NewTradeLedger([]float64{1, 2}, math.NaN()), ErrInvalidBalance},
		{"inf outcome", NewTradeLedger([]float64{1, math.Inf(1)}, 100), ErrInvalidOutcome},
		{"ok", NewTradeLedger([]float64{1, -2}, 100), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ledger.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate()=%v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate()=%v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestTradeLedger_Immutable(t *testing.T) {
	src := []float64{1, 2, 3}
	l := NewTradeLedger(src, 100)
	src[0] = 99

	got := l.Outcomes()
	if got[0] != 1 {
		t.Fatalf("Outcomes()[0]=%v, want 1", got[0])
	}
	got[1] = 99
	if l.Outcomes()[1] != 2 {
		t.Fatalf("ledger mutated through Outcomes()")
	}
}

func TestLedgerFromTrades(t *testing.T) {
	l := LedgerFromTrades([]Trade{{Type: "buy", Outcome: 10}, {Type: "sell", Outcome: -4}}, 500)
	if l.Len() != 2 || l.StartingBalance() != 500 {
		t.Fatalf("Len=%d StartingBalance=%v, want 2/500", l.Len(), l.StartingBalance())
	}
	if o := l.Outcomes(); o[0] != 10 || o[1] != -4 {
		t.Fatalf("Outcomes=%v, want [10 -4]", o)
	}
}

func TestSimulationRun_FinalBalance(t *testing.T) {
	if got := (SimulationRun{StartingBalance: 100}).FinalBalance(); got != 100 {
		t.Fatalf("FinalBalance=%v, want 100", got)
	}
	r := SimulationRun{StartingBalance: 100, Outcomes: []float64{5, -2}, Balances: []float64{105, 103}}
	if got := r.FinalBalance(); got != 103 {
		t.Fatalf("FinalBalance=%v, want 103", got)
	}
}
