package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signal-engine/internal/types"
)

func series(closes ...float64) types.CandleSeries {
	var s types.CandleSeries
	for i, c := range closes {
		s.Candles = append(s.Candles, types.Candle{Ts: int64(i + 1), Open: c, High: c + 1, Low: c - 1, Close: c, Vol: 1})
	}
	return s
}

func TestFindFallback(t *testing.T) {
	lv := Find(series(100, 100, 100))
	assert.InDelta(t, 105, lv.Resistance, 1e-9)
	assert.InDelta(t, 95, lv.Support, 1e-9)
	assert.Equal(t, types.MidRange, lv.Position)
}

func TestFindNearSupport(t *testing.T) {
	// a trough at 90 and a peak at 120, ending just above the trough
	closes := []float64{100, 98, 96, 94, 92, 90, 92, 94, 96, 98, 100,
		105, 110, 115, 120, 115, 110, 105, 100, 95, 92, 90.5}
	lv := Find(series(closes...))
	assert.InDelta(t, 89, lv.Support, 1e-9)
	assert.InDelta(t, 121, lv.Resistance, 1e-9)
	assert.Equal(t, types.NearSupport, lv.Position)
}
