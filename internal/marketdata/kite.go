package marketdata

import (
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"

	"signal-engine/internal/types"
)

// FromHistorical converts Kite historical candles.
func FromHistorical(hist []kiteconnect.HistoricalData) []types.Candle {
	out := make([]types.Candle, 0, len(hist))
	for _, h := range hist {
		out = append(out, types.Candle{
			Ts:    h.Date.Time.Unix(),
			Open:  h.Open,
			High:  h.High,
			Low:   h.Low,
			Close: h.Close,
			Vol:   float64(h.Volume),
		})
	}
	return out
}

// BookFromDepth converts a Kite market-depth block. Empty slots are skipped.
func BookFromDepth(d models.Depth, ts int64) *types.OrderBookSnapshot {
	book := &types.OrderBookSnapshot{Ts: ts}
	for _, lv := range d.Buy {
		if lv.Price > 0 && lv.Quantity > 0 {
			book.Bids = append(book.Bids, types.OrderBookLevel{Price: lv.Price, Size: float64(lv.Quantity)})
		}
	}
	for _, lv := range d.Sell {
		if lv.Price > 0 && lv.Quantity > 0 {
			book.Asks = append(book.Asks, types.OrderBookLevel{Price: lv.Price, Size: float64(lv.Quantity)})
		}
	}
	return book
}

// Aggregate folds full-mode ticks into candles of the given interval.
// Volume is the change in cumulative traded volume within each bucket.
// Ticks must be in time order.
func Aggregate(ticks []models.Tick, interval time.Duration) []types.Candle {
	var out []types.Candle
	var bucket int64 = -1
	prevVol := 0.0
	for i, t := range ticks {
		ts := t.Timestamp.Time.Truncate(interval).Unix()
		price := t.LastPrice
		cum := float64(t.VolumeTraded)
		vol := 0.0
		if i > 0 && cum >= prevVol {
			vol = cum - prevVol
		}
		prevVol = cum

		if ts != bucket {
			bucket = ts
			out = append(out, types.Candle{Ts: ts, Open: price, High: price, Low: price, Close: price, Vol: vol})
			continue
		}
		c := &out[len(out)-1]
		c.High = max(c.High, price)
		c.Low = min(c.Low, price)
		c.Close = price
		c.Vol += vol
	}
	return out
}
