// Package jsonl 实现模拟结果的异步 JSONL 输出。
// 每次模拟一行，批次结束后追加一行汇总；编码与文件 I/O 在后台 goroutine 完成。
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"trade-montecarlo/internal/core/model"
	"trade-montecarlo/internal/stats/aggregate"
)

// RunRecord 单次模拟输出行
type RunRecord struct {
	// Kind 固定为 run
	Kind string `json:"kind"`
	// Run 模拟序号（从 1 开始，与报表一致）
	Run int `json:"run"`
	model.SimulationMetrics
}

// SummaryRecord 批次汇总输出行
type SummaryRecord struct {
	// Kind 固定为 summary
	Kind string `json:"kind"`
	// Seed 批次随机种子
	Seed uint64 `json:"seed"`
	// Mean 拟合均值
	Mean float64 `json:"mean"`
	// StdDev 拟合标准差
	StdDev float64 `json:"std_dev"`
	aggregate.Summary
}

type opType int

const (
	opWrite opType = iota
	opFlush
	opClose
)

type op struct {
	typ  opType
	val  any
	done chan error
}

// Writer 异步 JSONL 写入器
// Write 只负责投递；首个编码或写入错误会在 Flush/Close 时返回。
type Writer struct {
	// path 输出文件路径
	path string
	// ch 操作通道
	ch chan op

	// lines 已成功写入缓冲区的行数
	lines atomic.Int64
	// err 后台 goroutine 记录的首个错误
	errMu sync.Mutex
	err   error

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool

	sendMu sync.Mutex

	wg sync.WaitGroup
}

// NewWriter 创建 JSONL 写入器（覆盖已存在的文件）
// 参数 path: 输出文件路径
// 参数 bufferSize: 写入缓冲区大小（channel capacity）
func NewWriter(path string, bufferSize int) (*Writer, error) {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开输出文件失败: %w", err)
	}

	w := &Writer{
		path: path,
		ch:   make(chan op, bufferSize),
	}

	w.wg.Add(1)
	go w.loop(f)

	return w, nil
}

// Path 输出文件路径
func (w *Writer) Path() string {
	return w.path
}

// Lines 已写入的行数
func (w *Writer) Lines() int64 {
	return w.lines.Load()
}

// WriteRun 写入一次模拟的指标
// 参数 index: 模拟序号（从 0 开始）
func (w *Writer) WriteRun(index int, m model.SimulationMetrics) error {
	return w.Write(RunRecord{Kind: "run", Run: index + 1, SimulationMetrics: m})
}

// WriteSummary 写入批次汇总
func (w *Writer) WriteSummary(seed uint64, params model.DistributionParameters, s aggregate.Summary) error {
	return w.Write(SummaryRecord{Kind: "summary", Seed: seed, Mean: params.Mean, StdDev: params.StdDev, Summary: s})
}

// Write 异步写入一条 JSONL 记录
func (w *Writer) Write(v any) error {
	if w == nil {
		return fmt.Errorf("writer 为空")
	}
	if w.closed.Load() {
		return fmt.Errorf("writer 已关闭")
	}
	w.sendMu.Lock()
	defer w.sendMu.Unlock()
	if w.closed.Load() {
		return fmt.Errorf("writer 已关闭")
	}
	w.ch <- op{typ: opWrite, val: v}
	return nil
}

// Flush 强制 flush 文件缓冲区
func (w *Writer) Flush() error {
	if w == nil || w.closed.Load() {
		return nil
	}
	w.sendMu.Lock()
	defer w.sendMu.Unlock()
	if w.closed.Load() {
		return nil
	}
	done := make(chan error, 1)
	w.ch <- op{typ: opFlush, done: done}
	if err := <-done; err != nil {
		return err
	}
	return w.firstErr()
}

// Close 关闭写入器（会先 flush）
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		w.sendMu.Lock()
		defer w.sendMu.Unlock()
		done := make(chan error, 1)
		w.ch <- op{typ: opClose, done: done}
		w.closeErr = <-done
		close(w.ch)
	})
	w.wg.Wait()
	if w.closeErr != nil {
		return w.closeErr
	}
	return w.firstErr()
}

func (w *Writer) setErr(err error) {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

func (w *Writer) loop(f *os.File) {
	defer w.wg.Done()

	bw := bufio.NewWriterSize(f, 1<<20) // 1MB buffer

	for req := range w.ch {
		switch req.typ {
		case opWrite:
			b, err := json.Marshal(req.val)
			if err != nil {
				w.setErr(fmt.Errorf("编码 JSONL 记录失败: %w", err))
				continue
			}
			b = append(b, '\n')
			if _, err := bw.Write(b); err != nil {
				w.setErr(fmt.Errorf("写入 %s 失败: %w", w.path, err))
				continue
			}
			w.lines.Add(1)
		case opFlush:
			req.done <- bw.Flush()
		case opClose:
			err := bw.Flush()
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			req.done <- err
			return
		}
	}
}
