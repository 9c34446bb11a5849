package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 0.25, c.Synthesis.TrendWeight)
	assert.Equal(t, 0.6, c.Synthesis.ActionThreshold)
	assert.Equal(t, 0.7, c.Synthesis.RiskGate)
	assert.Equal(t, 20, c.Pattern.MinCandles)
	assert.Equal(t, 0.70, c.VolumeProfile.ValueAreaPct)
	assert.Equal(t, 0.4, c.Risk.VolatilityWeight)
	assert.Equal(t, "logs", c.Journal.Dir)
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	c, err := ParseConfig([]byte(`
timeframe: 1h
trend:
  fast_ema: 5
synthesis:
  risk_gate: 0.8
`))
	require.NoError(t, err)
	assert.Equal(t, "1h", c.Timeframe)
	assert.Equal(t, 5, c.Trend.FastEMA)
	assert.Equal(t, 0.8, c.Synthesis.RiskGate)
	assert.Equal(t, 0.75, c.Synthesis.GatedConfidence)
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"tag", "synthesis:\n  hold_confidence: 1.5\n", "HoldConfidence"},
		{"traditional sum", "synthesis:\n  trend_weight: 0.5\n", "traditional weights"},
		{"advanced sum", "synthesis:\n  pattern_weight: 0.3\n", "advanced weights"},
		{"risk weights", "risk:\n  drawdown_weight: 0.5\n", "risk: component weights"},
		{"bad yaml", "synthesis: [", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRoundTripFile(t *testing.T) {
	b, err := Default().Marshal()
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, b, 0o644))

	c, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
