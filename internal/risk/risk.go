package risk

import (
	"fmt"
	"math"

	"github.com/creasty/defaults"

	"signal-engine/internal/ta"
	"signal-engine/internal/types"
)

const Name = "risk"

type Config struct {
	VolatilityScale    float64 `yaml:"volatility_scale" default:"0.5" validate:"gt=0"`
	DrawdownScale      float64 `yaml:"drawdown_scale" default:"0.2" validate:"gt=0"`
	HighVolatility     float64 `yaml:"high_volatility" default:"0.6" validate:"gt=0"`
	ExtremeVolatility  float64 `yaml:"extreme_volatility" default:"1.0" validate:"gtfield=HighVolatility"`
	HighMultiplier     float64 `yaml:"high_multiplier" default:"1.2" validate:"gte=1"`
	ExtremeMultiplier  float64 `yaml:"extreme_multiplier" default:"1.5" validate:"gtefield=HighMultiplier"`
	VolatilityWeight   float64 `yaml:"volatility_weight" default:"0.4" validate:"gte=0,lte=1"`
	LiquidityWeight    float64 `yaml:"liquidity_weight" default:"0.3" validate:"gte=0,lte=1"`
	DrawdownWeight     float64 `yaml:"drawdown_weight" default:"0.3" validate:"gte=0,lte=1"`
	ReduceAbove        float64 `yaml:"reduce_above" default:"0.7" validate:"gt=0,lte=1"`
	VolatilityLookback int     `yaml:"volatility_lookback" default:"50" validate:"gte=2"`
}

func DefaultConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

// Input carries everything the assessor reads. Drawdown is owned by the
// caller; nil means it was not supplied.
type Input struct {
	Volatility float64
	Liquidity  float64
	Drawdown   *float64
}

type Assessor struct {
	cfg Config
}

func New(cfg Config) *Assessor {
	return &Assessor{cfg: cfg}
}

// Assess combines volatility, liquidity and drawdown into one score.
func (a *Assessor) Assess(in Input) (types.RiskAssessment, error) {
	if in.Drawdown == nil {
		return types.RiskAssessment{}, &types.RiskUnavailableError{Reason: "drawdown not supplied"}
	}
	dd := *in.Drawdown
	switch {
	case !finite(in.Volatility) || in.Volatility < 0:
		return types.RiskAssessment{}, &types.RiskUnavailableError{Reason: fmt.Sprintf("invalid volatility %v", in.Volatility)}
	case !finite(dd) || dd < 0:
		return types.RiskAssessment{}, &types.RiskUnavailableError{Reason: fmt.Sprintf("invalid drawdown %v", dd)}
	case !finite(in.Liquidity) || in.Liquidity < 0 || in.Liquidity > 1:
		return types.RiskAssessment{}, &types.RiskUnavailableError{Reason: fmt.Sprintf("invalid liquidity %v", in.Liquidity)}
	}

	state, mult := a.classify(in.Volatility)
	r := types.RiskAssessment{
		VolatilityRisk: ta.Clamp01(in.Volatility / a.cfg.VolatilityScale),
		LiquidityRisk:  1 - in.Liquidity,
		DrawdownRisk:   ta.Clamp01(dd / a.cfg.DrawdownScale),
		Volatility:     in.Volatility,
		State:          state,
		Multiplier:     mult,
	}
	r.Score = ta.Clamp01(a.cfg.VolatilityWeight*r.VolatilityRisk*mult +
		a.cfg.LiquidityWeight*r.LiquidityRisk +
		a.cfg.DrawdownWeight*r.DrawdownRisk)
	r.ReducePosition = r.Score > a.cfg.ReduceAbove
	return r, nil
}

func (a *Assessor) classify(vol float64) (types.VolatilityState, float64) {
	switch {
	case vol >= a.cfg.ExtremeVolatility:
		return types.VolExtreme, a.cfg.ExtremeMultiplier
	case vol >= a.cfg.HighVolatility:
		return types.VolHigh, a.cfg.HighMultiplier
	}
	return types.VolNormal, 1.0
}

// Volatility annualizes realized volatility over the trailing lookback using
// the series timeframe. NaN when fewer than three candles are available.
func (a *Assessor) Volatility(s types.CandleSeries) float64 {
	rets := ta.LogReturns(s.Tail(a.cfg.VolatilityLookback + 1).Closes())
	return ta.RealizedVolatility(rets, len(rets), ta.BarsPerYear(s.Timeframe))
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
