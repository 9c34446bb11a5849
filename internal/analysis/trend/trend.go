package trend

import (
	"context"
	"math"

	"github.com/creasty/defaults"
	"github.com/markcheno/go-talib"

	"signal-engine/internal/ta"
	"signal-engine/internal/types"
)

const Name = "trend"

type Config struct {
	FastEMA      int     `yaml:"fast_ema" default:"9" validate:"gte=2"`
	MidEMA       int     `yaml:"mid_ema" default:"21" validate:"gtfield=FastEMA"`
	SlowEMA      int     `yaml:"slow_ema" default:"50" validate:"gtfield=MidEMA"`
	RSIPeriod    int     `yaml:"rsi_period" default:"14" validate:"gte=2"`
	StochPeriod  int     `yaml:"stoch_period" default:"14" validate:"gte=2"`
	MACDFast     int     `yaml:"macd_fast" default:"12" validate:"gte=2"`
	MACDSlow     int     `yaml:"macd_slow" default:"26" validate:"gtfield=MACDFast"`
	MACDSignal   int     `yaml:"macd_signal" default:"9" validate:"gte=2"`
	BBPeriod     int     `yaml:"bb_period" default:"20" validate:"gte=2"`
	BBStdDev     float64 `yaml:"bb_stddev" default:"2" validate:"gt=0"`
	ATRPeriod    int     `yaml:"atr_period" default:"14" validate:"gte=2"`
	VolumePeriod int     `yaml:"volume_period" default:"20" validate:"gte=2"`
	VolumeSpike  float64 `yaml:"volume_spike" default:"1.5" validate:"gt=1"`
}

func DefaultConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

// MinCandles is the shortest series every indicator can be computed on.
func (c Config) MinCandles() int {
	need := c.SlowEMA
	for _, n := range []int{c.MACDSlow + c.MACDSignal, c.BBPeriod, c.ATRPeriod + 1, c.RSIPeriod + 1, c.VolumePeriod} {
		if n > need {
			need = n
		}
	}
	return need
}

type Analyzer struct {
	cfg Config
}

func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze scores trend, momentum, volatility and volume, each in [-1, 1].
func (a *Analyzer) Analyze(ctx context.Context, s types.CandleSeries) (types.TrendScores, error) {
	if err := ctx.Err(); err != nil {
		return types.TrendScores{}, err
	}
	if need := a.cfg.MinCandles(); s.Len() < need {
		return types.TrendScores{}, &types.InsufficientDataError{Analyzer: Name, Need: need, Got: s.Len()}
	}
	closes, highs, lows, vols := s.Closes(), s.Highs(), s.Lows(), s.Volumes()
	var out types.TrendScores

	a.trend(&out, closes)
	a.momentum(&out, closes, highs, lows)
	a.volatility(&out, closes, highs, lows)
	a.volume(&out, s.Last(), closes, vols)
	return out, nil
}

func (a *Analyzer) trend(out *types.TrendScores, closes []float64) {
	out.EMAFast = last(talib.Ema(closes, a.cfg.FastEMA))
	out.EMAMid = last(talib.Ema(closes, a.cfg.MidEMA))
	out.EMASlow = last(talib.Ema(closes, a.cfg.SlowEMA))
	f, m, sl := out.EMAFast, out.EMAMid, out.EMASlow
	switch {
	case f > m && m > sl:
		out.Trend = 1.0
	case f > m:
		out.Trend = 0.7
	case f < m && m < sl:
		out.Trend = -1.0
	case f < m:
		out.Trend = -0.7
	}
}

func (a *Analyzer) momentum(out *types.TrendScores, closes, highs, lows []float64) {
	out.RSI = last(talib.Rsi(closes, a.cfg.RSIPeriod))
	out.StochK = stochK(highs, lows, closes, a.cfg.StochPeriod)

	macd, signal, hist := talib.Macd(closes, a.cfg.MACDFast, a.cfg.MACDSlow, a.cfg.MACDSignal)
	out.MACDHist = last(hist)
	out.MACDCross = crossover(macd, signal)

	switch {
	case out.RSI < 30 && out.StochK < 20:
		out.Momentum = 1.0
	case out.RSI > 70 && out.StochK > 80:
		out.Momentum = -1.0
	case out.MACDCross == "bullish":
		out.Momentum = 0.7
	case out.MACDCross == "bearish":
		out.Momentum = -0.7
	}
}

// stochK is the fast stochastic %K of the last bar. A flat range reads 50.
func stochK(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if period <= 0 || n < period {
		return math.NaN()
	}
	_, hh := ta.MinMax(highs[n-period:])
	ll, _ := ta.MinMax(lows[n-period:])
	if hh == ll {
		return 50
	}
	k, _ := talib.StochF(highs, lows, closes, period, 1, talib.SMA)
	return last(k)
}

func (a *Analyzer) volatility(out *types.TrendScores, closes, highs, lows []float64) {
	upper, _, lower := talib.BBands(closes, a.cfg.BBPeriod, a.cfg.BBStdDev, a.cfg.BBStdDev, talib.SMA)
	up, lo, c := last(upper), last(lower), closes[len(closes)-1]
	out.BBPosition = 0.5
	if up > lo {
		out.BBPosition = (c - lo) / (up - lo)
	}
	if c > 0 {
		out.ATRPercent = last(talib.Atr(highs, lows, closes, a.cfg.ATRPeriod)) / c * 100
	}
	switch {
	case out.BBPosition < 0.2:
		out.Volatility = 1.0
	case out.BBPosition > 0.8:
		out.Volatility = -1.0
	}
}

// volume scores a spike only when OBV and the spike candle agree in direction.
func (a *Analyzer) volume(out *types.TrendScores, lastBar types.Candle, closes, vols []float64) {
	avg := ta.SMA(vols, a.cfg.VolumePeriod)
	out.RelativeVolume = 1.0
	if avg > 0 {
		out.RelativeVolume = lastBar.Vol / avg
	}
	obv := talib.Obv(closes, vols)
	out.OBVRising = last(obv) > last(talib.Sma(obv, a.cfg.VolumePeriod))

	if out.RelativeVolume <= a.cfg.VolumeSpike {
		return
	}
	switch {
	case out.OBVRising && lastBar.Close > lastBar.Open:
		out.Volume = 1.0
	case !out.OBVRising && lastBar.Close < lastBar.Open:
		out.Volume = -1.0
	}
}

func crossover(fast, slow []float64) string {
	n := len(fast)
	if n < 2 || len(slow) != n {
		return "none"
	}
	switch {
	case fast[n-2] <= slow[n-2] && fast[n-1] > slow[n-1]:
		return "bullish"
	case fast[n-2] >= slow[n-2] && fast[n-1] < slow[n-1]:
		return "bearish"
	}
	return "none"
}

func last(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	return vals[len(vals)-1]
}
