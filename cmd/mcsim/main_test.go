package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"trade-montecarlo/internal/config"
)

func writeReport(t *testing.T, dir string) string {
	t.Helper()
	rows := [][]interface{}{
		{"Deals"},
		{"Time", "Deal", "Symbol", "Type", "Direction", "Volume", "Price", "Order", "Commission", "Swap", "Profit", "Balance"},
		{"", "", "", "balance", "", "", "", "", "", "", "0", "5 000.00"},
		{"", "", "", "buy", "in", "", "", "", "", "", "0", ""},
		{"", "", "", "sell", "out", "", "", "", "", "", "80.00", ""},
		{"", "", "", "sell", "in", "", "", "", "", "", "0", ""},
		{"", "", "", "buy", "out", "", "", "", "", "", "-35.50", ""},
		{"", "", "", "buy", "in", "", "", "", "", "", "0", ""},
		{"", "", "", "sell", "out", "", "", "", "", "", "12.25", ""},
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &rows[i]))
	}
	path := filepath.Join(dir, "ReportTester.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Input.ReportPath = writeReport(t, dir)
	cfg.Simulation.NumSimulations = 50
	cfg.Simulation.Seed = 99
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.RunsEnabled = true
	cfg.Output.SummaryEnabled = true
	cfg.Output.MetricsTextfile = filepath.Join(dir, "out", "mcsim.prom")
	require.NoError(t, cfg.Validate())

	require.NoError(t, run(context.Background(), cfg, zap.NewNop()))

	f, err := os.Open(cfg.RunsPath())
	require.NoError(t, err)
	defer f.Close()

	var kinds []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec struct {
			Kind string `json:"kind"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		kinds = append(kinds, rec.Kind)
	}
	require.NoError(t, sc.Err())
	require.Len(t, kinds, 51)
	assert.Equal(t, "summary", kinds[50])

	prom, err := os.ReadFile(cfg.Output.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "trade_montecarlo_simulation_runs_total 50")
}

func TestRun_MissingReport(t *testing.T) {
	cfg := config.Default()
	cfg.Input.ReportPath = filepath.Join(t.TempDir(), "missing.xlsx")

	assert.Error(t, run(context.Background(), cfg, zap.NewNop()))
}

func TestRun_Canceled(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input.ReportPath = writeReport(t, dir)
	cfg.Output.Dir = filepath.Join(dir, "out")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, run(ctx, cfg, zap.NewNop()), context.Canceled)
}

func TestNewLogger_InvalidLevelFallsBack(t *testing.T) {
	logger := newLogger("loud")
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
