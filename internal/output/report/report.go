// Package report 输出控制台报告：初始资金、历史交易、逐次模拟结果与批次汇总。
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"trade-montecarlo/internal/core/model"
	"trade-montecarlo/internal/montecarlo"
)

// Options 报告内容开关
type Options struct {
	// PrintTrades 是否列出历史交易
	PrintTrades bool
	// PrintRuns 是否列出每次模拟的最终资金
	PrintRuns bool
}

// Write 写出完整报告
// 参数 trades: 报表中提取的历史交易（PrintTrades 为 false 时可为 nil）
func Write(w io.Writer, opts Options, ledger model.TradeLedger, trades []model.Trade, res *montecarlo.Result) error {
	p := &printer{w: w}

	p.printf("Initial Balance: %s\n", money(ledger.StartingBalance()))
	if opts.PrintTrades {
		p.printf("Extracted Trades:\n")
		for i, t := range trades {
			p.printf("%d: Type: %s, Outcome: %s\n", i+1, t.Type, money(t.Outcome))
		}
		p.printf("\n")
	}

	p.printf("Number of simulations: %s\n", humanize.Comma(int64(res.Len())))
	p.printf("Trades per simulation: %d\n", ledger.Len())
	p.printf("Fitted distribution: mean=%s std_dev=%s\n", money(res.Params.Mean), money(res.Params.StdDev))
	p.printf("Seed: %d\n", res.Seed)
	p.printf("\n%s\n\n", banner("Monte Carlo Results"))

	if opts.PrintRuns {
		for i, fb := range res.FinalBalances() {
			p.printf("simulation #%d: %s\n", i+1, money(fb))
		}
		p.printf("\n")
	}

	s := res.Summary()
	p.printf("%-22s %16s %16s %16s\n", "", "P5", "P50", "P95")
	p.printf("%-22s %16s %16s %16s\n", "Final balance", money(s.FinalBalanceP5), money(s.FinalBalanceP50), money(s.FinalBalanceP95))
	p.printf("%-22s %15s%% %15s%% %15s%%\n", "Max drawdown", pct(s.MaxDrawdownPctP5), pct(s.MaxDrawdownPctP50), pct(s.MaxDrawdownPctP95))
	p.printf("\n")
	p.printf("%-26s %s%%\n", "Avg win rate:", pct(s.AvgWinRate))
	p.printf("%-26s %s\n", "Avg profit factor:", ratio(s.AvgProfitFactor))
	p.printf("%-26s %s\n", "Avg Sharpe ratio:", ratio(s.AvgSharpeRatio))
	p.printf("%-26s %s\n", "Avg max consecutive loss:", ratio(s.AvgMaxConsecutiveLosses))
	p.printf("%-26s %s\n", "Avg risk/reward ratio:", ratio(s.AvgRiskRewardRatio))

	return p.err
}

// printer 记录首个写入错误，之后的写入直接忽略
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func banner(title string) string {
	pad := strings.Repeat("_", 5)
	return pad + title + pad
}

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func pct(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}

func ratio(v float64) string {
	return humanize.FtoaWithDigits(v, 3)
}
