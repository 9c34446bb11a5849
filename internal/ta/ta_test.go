package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMAAndStdDev(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 4.0, SMA(vals, 3), 1e-12)
	assert.True(t, math.IsNaN(SMA(vals, 6)))
	assert.InDelta(t, 3.0, Mean(vals), 1e-12)
	assert.InDelta(t, math.Sqrt(2), StdDev(vals, 5), 1e-12)
}

func TestChange(t *testing.T) {
	vals := []float64{100, 101, 102, 103, 104, 110}
	assert.InDelta(t, 0.10, Change(vals, 5), 1e-12)
	assert.True(t, math.IsNaN(Change(vals, 6)))
}

func TestRealizedVolatility(t *testing.T) {
	flat := LogReturns([]float64{10, 10, 10, 10})
	assert.Equal(t, 0.0, RealizedVolatility(flat, 3, 252))

	rets := []float64{0.01, -0.01, 0.01, -0.01}
	v := RealizedVolatility(rets, 4, 252)
	// sample variance of +/-0.01 over 4 points is 0.0004/3
	assert.InDelta(t, math.Sqrt(0.0004/3*252), v, 1e-12)
	assert.True(t, math.IsNaN(RealizedVolatility(rets, 5, 252)))
}

func TestBarsPerYear(t *testing.T) {
	assert.Equal(t, 252.0, BarsPerYear(""))
	assert.Equal(t, 252.0, BarsPerYear("1d"))
	assert.Equal(t, 8760.0, BarsPerYear("1h"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-1))
	assert.Equal(t, 1.0, Clamp01(3))
	assert.Equal(t, 0.4, Clamp01(0.4))
}

func TestSwings(t *testing.T) {
	vals := []float64{1, 2, 5, 2, 1, 3, 3, 1, 0, 1}
	highs := SwingHighs(vals, 2)
	require.Len(t, highs, 2)
	assert.Equal(t, Swing{Index: 2, Value: 5}, highs[0])
	// first bar of the 3,3 plateau
	assert.Equal(t, 5, highs[1].Index)

	lows := SwingLows(vals, 2)
	require.Len(t, lows, 1)
	assert.Equal(t, 4, lows[0].Index)
}
