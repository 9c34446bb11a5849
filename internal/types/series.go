package types

import (
	"fmt"
	"math"
)

// CandleSeries is a chronologically ordered run of candles for one instrument.
type CandleSeries struct {
	Symbol    string   `json:"symbol,omitempty"`
	Timeframe string   `json:"timeframe,omitempty"`
	Candles   []Candle `json:"candles"`
}

func (s CandleSeries) Len() int { return len(s.Candles) }

func (s CandleSeries) Last() Candle {
	if len(s.Candles) == 0 {
		return Candle{}
	}
	return s.Candles[len(s.Candles)-1]
}

// Tail returns the trailing n candles as a series sharing the same backing array.
func (s CandleSeries) Tail(n int) CandleSeries {
	if n <= 0 || n >= len(s.Candles) {
		return s
	}
	out := s
	out.Candles = s.Candles[len(s.Candles)-n:]
	return out
}

func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

func (s CandleSeries) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

func (s CandleSeries) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

func (s CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Vol
	}
	return out
}

// Validate checks the series contract: at least one candle, finite
// non-negative prices and volumes, high >= low, strictly increasing timestamps.
func (s CandleSeries) Validate() error {
	if len(s.Candles) == 0 {
		return fmt.Errorf("%w: empty candle series", ErrInvalidSeries)
	}
	for i, c := range s.Candles {
		for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close, c.Vol} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: candle %d has non-finite value", ErrInvalidSeries, i)
			}
			if v < 0 {
				return fmt.Errorf("%w: candle %d has negative value %g", ErrInvalidSeries, i, v)
			}
		}
		if c.High < c.Low {
			return fmt.Errorf("%w: candle %d high %g below low %g", ErrInvalidSeries, i, c.High, c.Low)
		}
		if i > 0 && c.Ts <= s.Candles[i-1].Ts {
			return fmt.Errorf("%w: timestamp %d at %d not after %d", ErrInvalidSeries, c.Ts, i, s.Candles[i-1].Ts)
		}
	}
	return nil
}

// Empty reports whether either side of the book has no levels.
func (b *OrderBookSnapshot) Empty() bool {
	return b == nil || len(b.Bids) == 0 || len(b.Asks) == 0
}

// Validate checks side ordering, positive levels and an uncrossed top of book.
func (b *OrderBookSnapshot) Validate() error {
	if b == nil {
		return &InvalidOrderBookError{Reason: "no order book"}
	}
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return &InvalidOrderBookError{Reason: "empty side"}
	}
	if err := checkSide("bid", b.Bids, func(prev, cur float64) bool { return cur < prev }); err != nil {
		return err
	}
	if err := checkSide("ask", b.Asks, func(prev, cur float64) bool { return cur > prev }); err != nil {
		return err
	}
	if b.Bids[0].Price >= b.Asks[0].Price {
		return &InvalidOrderBookError{Reason: fmt.Sprintf("crossed book: bid %g >= ask %g", b.Bids[0].Price, b.Asks[0].Price)}
	}
	return nil
}

func checkSide(name string, levels []OrderBookLevel, ordered func(prev, cur float64) bool) error {
	for i, l := range levels {
		if !(l.Price > 0) || !(l.Size > 0) || math.IsInf(l.Price, 0) || math.IsInf(l.Size, 0) {
			return &InvalidOrderBookError{Reason: fmt.Sprintf("%s level %d not positive", name, i)}
		}
		if i > 0 && !ordered(levels[i-1].Price, l.Price) {
			return &InvalidOrderBookError{Reason: fmt.Sprintf("%s levels out of order at %d", name, i)}
		}
	}
	return nil
}
