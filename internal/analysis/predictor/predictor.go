package predictor

import (
	"context"
	"math"

	"github.com/creasty/defaults"

	"signal-engine/internal/ta"
	"signal-engine/internal/types"
)

const Name = "prediction"

type Config struct {
	ReturnPeriod     int     `yaml:"return_period" default:"5" validate:"gte=1"`
	MomentumPeriod   int     `yaml:"momentum_period" default:"10" validate:"gte=1"`
	VolumeWindow     int     `yaml:"volume_window" default:"5" validate:"gte=1"`
	VolatilityWindow int     `yaml:"volatility_window" default:"20" validate:"gte=2"`
	HighVolatility   float64 `yaml:"high_volatility" default:"0.03" validate:"gt=0"`
	VolatilityDamp   float64 `yaml:"volatility_damp" default:"0.8" validate:"gt=0,lte=1"`
}

func DefaultConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

func (c Config) MinCandles() int {
	need := c.VolatilityWindow + 1
	for _, n := range []int{c.ReturnPeriod + 1, c.MomentumPeriod + 1, 2 * c.VolumeWindow} {
		if n > need {
			need = n
		}
	}
	return need
}

type feature int

const (
	shortReturn feature = iota
	momentum
	volumeRatio
)

// factor fires +Weight above Above and -Weight below Below.
type factor struct {
	Feature   feature
	Above     float64
	Below     float64
	Weight    int
	BullLabel string
	BearLabel string
}

var factors = []factor{
	{Feature: shortReturn, Above: 0.02, Below: -0.02, Weight: 1, BullLabel: "positive_short_trend", BearLabel: "negative_short_trend"},
	{Feature: momentum, Above: 0.05, Below: -0.05, Weight: 1, BullLabel: "positive_momentum", BearLabel: "negative_momentum"},
	{Feature: volumeRatio, Above: 1.2, Below: 0.8, Weight: 1, BullLabel: "increasing_volume", BearLabel: "decreasing_volume"},
}

type Predictor struct {
	cfg Config
}

func New(cfg Config) *Predictor {
	return &Predictor{cfg: cfg}
}

// Features are the inputs the factor table reads.
type Features struct {
	Return      float64
	Momentum    float64
	VolumeRatio float64
	Volatility  float64
}

func (p *Predictor) Features(s types.CandleSeries) Features {
	closes, vols := s.Closes(), s.Volumes()
	f := Features{
		Return:      ta.Change(closes, p.cfg.ReturnPeriod),
		Momentum:    ta.Change(closes, p.cfg.MomentumPeriod),
		VolumeRatio: 1.0,
		Volatility:  ta.StdDev(ta.Returns(closes), p.cfg.VolatilityWindow),
	}
	w := p.cfg.VolumeWindow
	recent := ta.SMA(vols, w)
	hist := ta.SMA(vols[:len(vols)-w], w)
	if hist > 0 {
		f.VolumeRatio = recent / hist
	}
	return f
}

func (f Features) value(ft feature) float64 {
	switch ft {
	case shortReturn:
		return f.Return
	case momentum:
		return f.Momentum
	case volumeRatio:
		return f.VolumeRatio
	}
	return math.NaN()
}

func (p *Predictor) Predict(ctx context.Context, s types.CandleSeries) (types.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return types.PredictionResult{}, err
	}
	if need := p.cfg.MinCandles(); s.Len() < need {
		return types.PredictionResult{}, &types.InsufficientDataError{Analyzer: Name, Need: need, Got: s.Len()}
	}
	return p.Score(p.Features(s)), nil
}

// Score applies the factor table to f.
func (p *Predictor) Score(f Features) types.PredictionResult {
	net := 0
	var bull, bear []string
	for _, fc := range factors {
		v := f.value(fc.Feature)
		switch {
		case v > fc.Above:
			net += fc.Weight
			bull = append(bull, fc.BullLabel)
		case v < fc.Below:
			net -= fc.Weight
			bear = append(bear, fc.BearLabel)
		}
	}

	res := types.PredictionResult{
		Direction:  types.BiasOf(float64(net)),
		Net:        net,
		Factors:    []string{},
		Volatility: f.Volatility,
	}
	switch res.Direction {
	case types.Bullish:
		res.Factors = bull
	case types.Bearish:
		res.Factors = bear
	}

	conf := math.Min(0.5+0.1*math.Abs(float64(net)), 1.0)
	if f.Volatility > p.cfg.HighVolatility {
		conf *= p.cfg.VolatilityDamp
	}
	res.Confidence = math.Max(conf, 0.5)
	return res
}
