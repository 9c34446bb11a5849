package orderflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-engine/internal/types"
)

func candles(up, down int, vol float64) types.CandleSeries {
	var s types.CandleSeries
	ts := int64(1)
	for i := 0; i < up; i++ {
		s.Candles = append(s.Candles, types.Candle{Ts: ts, Open: 100, High: 101, Low: 99, Close: 100.5, Vol: vol})
		ts++
	}
	for i := 0; i < down; i++ {
		s.Candles = append(s.Candles, types.Candle{Ts: ts, Open: 100, High: 101, Low: 99, Close: 99.5, Vol: vol})
		ts++
	}
	return s
}

func book(bid, ask float64, bidSizes, askSizes []float64) *types.OrderBookSnapshot {
	b := &types.OrderBookSnapshot{Ts: 1}
	for i, sz := range bidSizes {
		b.Bids = append(b.Bids, types.OrderBookLevel{Price: bid - float64(i)*0.01, Size: sz})
	}
	for i, sz := range askSizes {
		b.Asks = append(b.Asks, types.OrderBookLevel{Price: ask + float64(i)*0.01, Size: sz})
	}
	return b
}

func TestAnalyzeBullish(t *testing.T) {
	a := New(DefaultConfig())
	m, err := a.Analyze(context.Background(), candles(14, 6, 100), book(99.99, 100.01, []float64{30, 30}, []float64{20, 20}))
	require.NoError(t, err)
	assert.True(t, m.Available)
	assert.InDelta(t, 0.7, m.BuyPressure, 1e-12)
	assert.InDelta(t, 1.5, m.BidAskRatio, 1e-12)
	assert.InDelta(t, 0.02, m.SpreadPct, 1e-9)
	assert.Equal(t, 1.0, m.LiquidityScore)
	assert.Equal(t, types.Bullish, m.Bias)
}

func TestAnalyzeBearish(t *testing.T) {
	a := New(DefaultConfig())
	m, err := a.Analyze(context.Background(), candles(4, 16, 100), book(99.99, 100.01, []float64{10}, []float64{20}))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, m.BuyPressure, 1e-12)
	assert.Equal(t, types.Bearish, m.Bias)
}

func TestBuyPressureLookback(t *testing.T) {
	s := candles(30, 20, 10)
	// only the trailing 20 candles count, all of which close down
	assert.Equal(t, 0.0, BuyPressure(s, 20))
	assert.Equal(t, 0.5, BuyPressure(candles(3, 3, 0), 20))
}

func TestBidAskRatioScaleInvariant(t *testing.T) {
	bids := []float64{5, 7, 3, 2, 9, 4, 1, 6, 8, 2, 100}
	asks := []float64{4, 2, 6, 1, 3, 8, 5, 7, 2, 8, 100}
	base := BidAskRatio(book(99.9, 100.1, bids, asks), 10)
	for _, k := range []float64{0.001, 0.5, 3, 1e6} {
		sb := make([]float64, len(bids))
		sa := make([]float64, len(asks))
		for i := range bids {
			sb[i] = bids[i] * k
			sa[i] = asks[i] * k
		}
		assert.InDelta(t, base, BidAskRatio(book(99.9, 100.1, sb, sa), 10), 1e-12, "k=%g", k)
	}
	// level 11 is outside the top-10 depth
	assert.InDelta(t, 47.0/46.0, base, 1e-12)
}

func TestLiquidityInterpolation(t *testing.T) {
	a := New(DefaultConfig())
	cases := []struct {
		spread float64
		want   float64
	}{
		{0, 1}, {0.05, 1}, {0.275, 0.5}, {0.5, 0}, {2, 0},
	}
	prev := 2.0
	for _, c := range cases {
		got := a.liquidity(c.spread)
		assert.InDelta(t, c.want, got, 1e-9, "spread=%g", c.spread)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
}

func TestAnalyzeMissingBook(t *testing.T) {
	a := New(DefaultConfig())
	cases := map[string]*types.OrderBookSnapshot{
		"nil":       nil,
		"empty":     {},
		"no asks":   {Bids: []types.OrderBookLevel{{Price: 1, Size: 1}}},
		"crossed":   book(100.2, 100.1, []float64{1}, []float64{1}),
		"zero size": book(99.9, 100.1, []float64{0}, []float64{1}),
		"unsorted": {
			Bids: []types.OrderBookLevel{{Price: 99, Size: 1}, {Price: 99.5, Size: 1}},
			Asks: []types.OrderBookLevel{{Price: 100, Size: 1}},
		},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := a.Analyze(context.Background(), candles(10, 10, 1), b)
			assert.True(t, errors.Is(err, types.ErrInvalidOrderBook))
			assert.Equal(t, Neutral(), m)
			assert.False(t, m.Available)
		})
	}
}
