package volprofile

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-engine/internal/types"
)

func series(closes, vols []float64) types.CandleSeries {
	var s types.CandleSeries
	for i, c := range closes {
		s.Candles = append(s.Candles, types.Candle{Ts: int64(i + 1), Open: c, High: c + 1, Low: c - 1, Close: c, Vol: vols[i]})
	}
	return s
}

func TestAnalyzeSimpleProfile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bins = 10
	closes := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 105, 105, 105}
	vols := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 100, 100, 100}
	vp, err := New(cfg).Analyze(context.Background(), series(closes, vols), 120)
	require.NoError(t, err)

	assert.Equal(t, 5, vp.POCIndex)
	assert.InDelta(t, 105.5, vp.POC, 1e-9)
	assert.Equal(t, 410.0, vp.TotalVolume)
	assert.GreaterOrEqual(t, vp.ValueAreaVolume, 0.7*vp.TotalVolume)
	assert.Equal(t, types.AboveValue, vp.Position)
	assert.LessOrEqual(t, vp.ValueAreaLow, vp.POC)
	assert.GreaterOrEqual(t, vp.ValueAreaHigh, vp.POC)
}

func TestValueAreaBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := New(DefaultConfig())
	for trial := 0; trial < 50; trial++ {
		n := 10 + rng.Intn(60)
		closes := make([]float64, n)
		vols := make([]float64, n)
		p := 100.0
		for i := range closes {
			p += rng.NormFloat64()
			closes[i] = math.Max(1, p)
			vols[i] = 1 + rng.Float64()*1000
		}
		vp, err := a.Analyze(context.Background(), series(closes, vols), closes[n-1])
		require.NoError(t, err)

		assert.LessOrEqual(t, vp.VALIndex, vp.POCIndex)
		assert.GreaterOrEqual(t, vp.VAHIndex, vp.POCIndex)

		var sum float64
		for i := vp.VALIndex; i <= vp.VAHIndex; i++ {
			sum += vp.Bins[i].Volume
		}
		assert.InDelta(t, sum, vp.ValueAreaVolume, 1e-6)
		assert.GreaterOrEqual(t, vp.ValueAreaVolume, 0.7*vp.TotalVolume-1e-9)

		var last float64
		if vp.VALIndex == vp.VAHIndex {
			last = vp.Bins[vp.POCIndex].Volume
		} else {
			last = math.Max(vp.Bins[vp.VALIndex].Volume, vp.Bins[vp.VAHIndex].Volume)
		}
		assert.Less(t, vp.ValueAreaVolume, 0.7*vp.TotalVolume+last+1e-9)
	}
}

func TestAnalyzeFlatPrice(t *testing.T) {
	closes := make([]float64, 12)
	vols := make([]float64, 12)
	for i := range closes {
		closes[i], vols[i] = 50, 5
	}
	vp, err := New(DefaultConfig()).Analyze(context.Background(), series(closes, vols), 50)
	require.NoError(t, err)
	assert.Len(t, vp.Bins, 1)
	assert.Equal(t, 50.0, vp.POC)
	assert.Equal(t, types.InsideValue, vp.Position)
}

func TestAnalyzePositions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bins = 10
	closes := []float64{100, 100, 100, 100, 100, 110, 110, 110, 110, 110}
	vols := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	a := New(cfg)
	vp, err := a.Analyze(context.Background(), series(closes, vols), 90)
	require.NoError(t, err)
	assert.Equal(t, types.BelowValue, vp.Position)

	vp, err = a.Analyze(context.Background(), series(closes, vols), 105)
	require.NoError(t, err)
	assert.Equal(t, types.InsideValue, vp.Position)
}

func TestAnalyzeInsufficient(t *testing.T) {
	_, err := New(DefaultConfig()).Analyze(context.Background(), series([]float64{1, 2}, []float64{1, 1}), 2)
	assert.True(t, errors.Is(err, types.ErrInsufficientData))

	zero := make([]float64, 10)
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	_, err = New(DefaultConfig()).Analyze(context.Background(), series(closes, zero), 2)
	assert.True(t, errors.Is(err, types.ErrInsufficientData))
}
