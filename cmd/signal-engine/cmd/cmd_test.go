package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-engine/internal/types"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func candleCSV(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("ts,open,high,low,close,volume\n")
	for i := 0; i < n; i++ {
		c := 100 + 0.4*float64(i)
		fmt.Fprintf(&b, "%d,%.2f,%.2f,%.2f,%.2f,%d\n", 1_700_000_000+i*3600, c-0.1, c+0.5, c-0.5, c, 1000+10*i)
	}
	p := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(p, []byte(b.String()), 0o644))
	return p
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "signal-engine version "+version+"\n", out)
}

func TestConfigInitAndValidate(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	out, err := run(t, "config", "init", "-o", p)
	require.NoError(t, err)
	assert.Contains(t, out, p)

	out, err = run(t, "config", "validate", "-f", p)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")

	require.NoError(t, os.WriteFile(p, []byte("synthesis:\n  trend_weight: 0.9\n"), 0o644))
	_, err = run(t, "config", "validate", "-f", p)
	assert.ErrorContains(t, err, "traditional weights")
}

func TestEvaluate(t *testing.T) {
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "metrics.prom")
	out, err := run(t, "evaluate",
		"--candles", candleCSV(t, 80),
		"--symbol", "RELIANCE",
		"--timeframe", "1h",
		"--drawdown", "0.02",
		"--journal", dir,
		"--account", "100000",
		"--metrics-out", metricsPath,
	)
	require.NoError(t, err)

	var got struct {
		Signal types.Signal `json:"signal"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "RELIANCE", got.Signal.Symbol)
	assert.Contains(t, []types.Action{types.Buy, types.Sell, types.Hold}, got.Signal.Action)
	assert.NotEmpty(t, got.Signal.Reasoning)
	assert.Contains(t, got.Signal.Unavailable, "order_flow")

	entries, err := os.ReadDir(filepath.Join(dir, "signals"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "signal_engine_engine_evaluations_total")
}

func TestEvaluateUnknownDrawdown(t *testing.T) {
	out, err := run(t, "evaluate", "--candles", candleCSV(t, 30), "--no-drawdown")
	require.NoError(t, err)
	var got struct {
		Signal types.Signal `json:"signal"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, types.Hold, got.Signal.Action)
	assert.Equal(t, 0.0, got.Signal.Confidence)
	assert.Equal(t, 1.0, got.Signal.RiskScore)
}

func TestEvaluateEquityCurve(t *testing.T) {
	candles := candleCSV(t, 30)
	riskScore := func(args ...string) float64 {
		out, err := run(t, append([]string{"evaluate", "--candles", candles}, args...)...)
		require.NoError(t, err)
		var got struct {
			Signal types.Signal `json:"signal"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.NotNil(t, got.Signal.Risk)
		return got.Signal.RiskScore
	}
	flat := riskScore("--drawdown", "0")
	fallen := riskScore("--equity", "100,120,60")
	assert.Greater(t, fallen, flat)
}

func TestEvaluateMissingFile(t *testing.T) {
	_, err := run(t, "evaluate", "--candles", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
