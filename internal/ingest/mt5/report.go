// Package mt5 从 MetaTrader 5 策略测试报表（.xlsx）提取历史交易与初始资金。
//
// 报表中 "Deals" 行之后依次为：列名行、初始资金行（Balance 列）、成交行。
// 成交行按 in/out 成对出现：in 行提供交易类型，紧随其后的行提供盈亏。
package mt5

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"trade-montecarlo/internal/core/model"
	"trade-montecarlo/internal/util/fastparse"
)

// 报表列下标（从 0 开始）
const (
	colSection   = 0
	colType      = 3
	colDirection = 4
	colProfit    = 10
	colBalance   = 11
)

const (
	sectionDeals = "Deals"
	directionIn  = "in"
)

var (
	// ErrNoDealsSection 报表中没有 Deals 段
	ErrNoDealsSection = errors.New("报表中未找到 Deals 段")
	// ErrNoBalance Deals 段中没有有效的初始资金
	ErrNoBalance = errors.New("报表中未找到初始资金")
)

// Report 报表解析结果
type Report struct {
	// InitialBalance 初始资金
	InitialBalance float64
	// Trades 配对后的交易
	Trades []model.Trade
}

// Ledger 转换为交易账本
func (r *Report) Ledger() model.TradeLedger {
	return model.LedgerFromTrades(r.Trades, r.InitialBalance)
}

// LoadReport 打开 xlsx 报表并解析
// 参数 path: 报表路径
// 参数 sheet: 工作表名称，为空时使用活动工作表
func LoadReport(path, sheet string) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("打开报表失败: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("读取工作表 %q 失败: %w", sheet, err)
	}

	rep, err := ParseDeals(rows)
	if err != nil {
		return nil, fmt.Errorf("解析报表 %s 失败: %w", path, err)
	}
	return rep, nil
}

// ParseDeals 从表格行中提取 Deals 段
// 参数 rows: 工作表全部行（单元格文本）
func ParseDeals(rows [][]string) (*Report, error) {
	start := -1
	for i, row := range rows {
		if strings.TrimSpace(cell(row, colSection)) == sectionDeals {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoDealsSection
	}

	// start+1 为列名行，start+2 为初始资金行
	balanceRow := start + 2
	if balanceRow >= len(rows) {
		return nil, ErrNoBalance
	}
	balance, err := fastparse.ParseAmount(cell(rows[balanceRow], colBalance))
	if err != nil {
		return nil, fmt.Errorf("%w: 第 %d 行: %v", ErrNoBalance, balanceRow+1, err)
	}
	if balance <= 0 {
		return nil, fmt.Errorf("%w: 第 %d 行资金为 %v", ErrNoBalance, balanceRow+1, balance)
	}

	rep := &Report{InitialBalance: balance}
	for i := balanceRow + 1; i < len(rows); i++ {
		if strings.TrimSpace(cell(rows[i], colDirection)) != directionIn {
			continue
		}
		// 报表以 in 行结尾时没有对应的 out 行
		if i+1 >= len(rows) {
			break
		}
		outRow := i + 1
		profit, err := fastparse.ParseAmount(cell(rows[outRow], colProfit))
		if err != nil {
			return nil, fmt.Errorf("第 %d 行盈亏无效: %w", outRow+1, err)
		}
		rep.Trades = append(rep.Trades, model.Trade{
			Type:    strings.TrimSpace(cell(rows[i], colType)),
			Outcome: profit,
		})
		i = outRow
	}
	return rep, nil
}

// cell 安全读取单元格，GetRows 会截断行尾空单元格
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
