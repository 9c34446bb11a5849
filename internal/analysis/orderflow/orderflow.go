package orderflow

import (
	"context"

	"github.com/creasty/defaults"

	"signal-engine/internal/ta"
	"signal-engine/internal/types"
)

const Name = "order_flow"

type Config struct {
	Lookback      int     `yaml:"lookback" default:"20" validate:"gte=1"`
	Depth         int     `yaml:"depth" default:"10" validate:"gte=1"`
	BullPressure  float64 `yaml:"bull_pressure" default:"0.6" validate:"gt=0.5,lte=1"`
	BearPressure  float64 `yaml:"bear_pressure" default:"0.4" validate:"gte=0,lt=0.5"`
	BullRatio     float64 `yaml:"bull_ratio" default:"1.2" validate:"gt=1"`
	BearRatio     float64 `yaml:"bear_ratio" default:"0.8" validate:"gt=0,lt=1"`
	TightSpreadPc float64 `yaml:"tight_spread_pct" default:"0.05" validate:"gte=0"`
	WideSpreadPc  float64 `yaml:"wide_spread_pct" default:"0.5" validate:"gtfield=TightSpreadPc"`
}

func DefaultConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

type Analyzer struct {
	cfg Config
}

func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Neutral is what callers get when the book is missing or malformed.
func Neutral() types.OrderFlowMetrics {
	return types.OrderFlowMetrics{
		BuyPressure:    0.5,
		BidAskRatio:    1.0,
		SpreadPct:      0,
		LiquidityScore: 0.5,
		Bias:           types.Neutral,
	}
}

// Analyze derives pressure from recent candles and imbalance from the book.
// A nil, empty or malformed book returns Neutral metrics and an
// InvalidOrderBookError.
func (a *Analyzer) Analyze(ctx context.Context, s types.CandleSeries, book *types.OrderBookSnapshot) (types.OrderFlowMetrics, error) {
	if err := ctx.Err(); err != nil {
		return Neutral(), err
	}
	if err := book.Validate(); err != nil {
		return Neutral(), err
	}
	if s.Len() == 0 {
		return Neutral(), &types.InsufficientDataError{Analyzer: Name, Need: 1, Got: 0}
	}

	m := types.OrderFlowMetrics{
		BuyPressure: BuyPressure(s, a.cfg.Lookback),
		BidAskRatio: BidAskRatio(book, a.cfg.Depth),
		Available:   true,
	}
	bid, ask := book.Bids[0].Price, book.Asks[0].Price
	mid := (bid + ask) / 2
	m.SpreadPct = (ask - bid) / mid * 100
	m.LiquidityScore = a.liquidity(m.SpreadPct)

	switch {
	case m.BuyPressure > a.cfg.BullPressure && m.BidAskRatio > a.cfg.BullRatio:
		m.Bias = types.Bullish
	case m.BuyPressure < a.cfg.BearPressure && m.BidAskRatio < a.cfg.BearRatio:
		m.Bias = types.Bearish
	default:
		m.Bias = types.Neutral
	}
	return m, nil
}

// BuyPressure is the share of volume traded on candles closing above their open.
func BuyPressure(s types.CandleSeries, lookback int) float64 {
	var up, total float64
	for _, c := range s.Tail(lookback).Candles {
		total += c.Vol
		if c.Close > c.Open {
			up += c.Vol
		}
	}
	if total == 0 {
		return 0.5
	}
	return up / total
}

// BidAskRatio sums the top depth levels on each side.
func BidAskRatio(book *types.OrderBookSnapshot, depth int) float64 {
	var bids, asks float64
	for i, l := range book.Bids {
		if i >= depth {
			break
		}
		bids += l.Size
	}
	for i, l := range book.Asks {
		if i >= depth {
			break
		}
		asks += l.Size
	}
	if asks == 0 {
		return 1.0
	}
	return bids / asks
}

func (a *Analyzer) liquidity(spreadPct float64) float64 {
	lo, hi := a.cfg.TightSpreadPc, a.cfg.WideSpreadPc
	switch {
	case spreadPct <= lo:
		return 1
	case spreadPct >= hi:
		return 0
	}
	return ta.Clamp01(1 - (spreadPct-lo)/(hi-lo))
}
