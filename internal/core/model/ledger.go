// Package model 定义模拟器中使用的核心数据结构。
package model

import (
	"fmt"
	"math"
)

// Trade 一笔已平仓交易
// 由报表解析器将 in/out 两行配对得到
type Trade struct {
	// Type 交易类型: buy 或 sell（取自 in 行）
	Type string `json:"type"`
	// Outcome 盈亏（取自 out 行 Profit 列）
	Outcome float64 `json:"outcome"`
}

// TradeLedger 历史交易账本（只读）
// 顺序不影响拟合结果，仅均值与方差参与建模。
type TradeLedger struct {
	outcomes        []float64
	startingBalance float64
}

// NewTradeLedger 创建交易账本
// 参数 outcomes: 历史交易盈亏序列（会被拷贝）
// 参数 startingBalance: 初始资金
func NewTradeLedger(outcomes []float64, startingBalance float64) TradeLedger {
	cp := make([]float64, len(outcomes))
	copy(cp, outcomes)
	return TradeLedger{outcomes: cp, startingBalance: startingBalance}
}

// LedgerFromTrades 由配对后的交易列表构建账本
func LedgerFromTrades(trades []Trade, startingBalance float64) TradeLedger {
	outcomes := make([]float64, len(trades))
	for i, t := range trades {
		outcomes[i] = t.Outcome
	}
	return TradeLedger{outcomes: outcomes, startingBalance: startingBalance}
}

// Outcomes 返回历史盈亏序列的拷贝
func (l TradeLedger) Outcomes() []float64 {
	cp := make([]float64, len(l.outcomes))
	copy(cp, l.outcomes)
	return cp
}

// StartingBalance 初始资金
func (l TradeLedger) StartingBalance() float64 {
	return l.startingBalance
}

// Len 历史交易笔数
func (l TradeLedger) Len() int {
	return len(l.outcomes)
}

// Validate 校验账本
// 返回: ErrEmptyLedger / ErrInvalidBalance / ErrInvalidOutcome（均已包装上下文）
func (l TradeLedger) Validate() error {
	if len(l.outcomes) == 0 {
		return ErrEmptyLedger
	}
	if l.startingBalance <= 0 || math.IsNaN(l.startingBalance) || math.IsInf(l.startingBalance, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidBalance, l.startingBalance)
	}
	for i, o := range l.outcomes {
		if math.IsNaN(o) || math.IsInf(o, 0) {
			return fmt.Errorf("%w: 第 %d 笔为 %v", ErrInvalidOutcome, i+1, o)
		}
	}
	return nil
}
