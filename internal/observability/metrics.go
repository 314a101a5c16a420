// Package observability 提供模拟批次的 Prometheus 指标。
// 指标注册在独立的 Registry 上，通过 node_exporter textfile 文件导出，不开启 HTTP 端口。
package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"trade-montecarlo/internal/stats/aggregate"
)

// Metrics 模拟批次指标
type Metrics struct {
	registry *prometheus.Registry

	// RunsSimulated 已完成的模拟次数
	RunsSimulated prometheus.Counter
	// BatchesTotal 批次数（按结果 ok/error/canceled）
	BatchesTotal *prometheus.CounterVec
	// RunDuration 单次模拟耗时
	RunDuration prometheus.Histogram
	// BatchDuration 批次耗时
	BatchDuration prometheus.Histogram
	// FinalBalance 单次模拟最终资金分布
	FinalBalance prometheus.Histogram
	// FinalBalancePercentile 最近一个批次的最终资金分位数
	FinalBalancePercentile *prometheus.GaugeVec
	// DrawdownPercentile 最近一个批次的最大回撤百分比分位数
	DrawdownPercentile *prometheus.GaugeVec
}

// NewMetrics 创建指标集合
// 参数 namespace: 指标前缀，空字符串时使用 trade_montecarlo
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trade_montecarlo"
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsSimulated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of Monte Carlo runs completed",
		}),
		BatchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "batches_total",
			Help:      "Total number of simulation batches by result",
		}, []string{"result"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Duration of a single simulation run",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a whole simulation batch",
			Buckets:   prometheus.DefBuckets,
		}),
		FinalBalance: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "final_balance",
			Help:      "Final account balance per simulation run",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 16),
		}),
		FinalBalancePercentile: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "final_balance",
			Help:      "Final balance percentile of the last batch",
		}, []string{"percentile"}),
		DrawdownPercentile: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "max_drawdown_percent",
			Help:      "Max drawdown percent percentile of the last batch",
		}, []string{"percentile"}),
	}
}

// ObserveRun 记录一次模拟
func (m *Metrics) ObserveRun(d time.Duration, finalBalance float64) {
	if m == nil {
		return
	}
	m.RunsSimulated.Inc()
	m.RunDuration.Observe(d.Seconds())
	m.FinalBalance.Observe(finalBalance)
}

// ObserveBatch 记录批次结果
// 参数 result: ok、error 或 canceled
// 参数 summary: 批次汇总，result 非 ok 时可为 nil
func (m *Metrics) ObserveBatch(result string, d time.Duration, summary *aggregate.Summary) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(result).Inc()
	m.BatchDuration.Observe(d.Seconds())
	if summary == nil {
		return
	}
	m.FinalBalancePercentile.WithLabelValues("p5").Set(summary.FinalBalanceP5)
	m.FinalBalancePercentile.WithLabelValues("p50").Set(summary.FinalBalanceP50)
	m.FinalBalancePercentile.WithLabelValues("p95").Set(summary.FinalBalanceP95)
	m.DrawdownPercentile.WithLabelValues("p5").Set(summary.MaxDrawdownPctP5)
	m.DrawdownPercentile.WithLabelValues("p50").Set(summary.MaxDrawdownPctP50)
	m.DrawdownPercentile.WithLabelValues("p95").Set(summary.MaxDrawdownPctP95)
}

// Gatherer 返回底层 Registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile 将当前指标写入 textfile（供 node_exporter textfile collector 采集）
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建指标目录失败: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("写入指标文件失败: %w", err)
	}
	return nil
}
