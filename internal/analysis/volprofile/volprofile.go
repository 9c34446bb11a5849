package volprofile

import (
	"context"

	"github.com/creasty/defaults"

	"signal-engine/internal/ta"
	"signal-engine/internal/types"
)

const Name = "volume_profile"

type Config struct {
	MinCandles   int     `yaml:"min_candles" default:"10" validate:"gte=2"`
	Lookback     int     `yaml:"lookback" default:"50" validate:"gtefield=MinCandles"`
	Bins         int     `yaml:"bins" default:"50" validate:"gte=1,lte=1000"`
	ValueAreaPct float64 `yaml:"value_area_pct" default:"0.70" validate:"gt=0,lte=1"`
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

// Analyze builds the volume-by-price histogram of the trailing window.
// Each candle's whole volume lands in the bin holding its close; the bins
// split [min close, max close] evenly.
func (a *Analyzer) Analyze(ctx context.Context, s types.CandleSeries, currentPrice float64) (types.VolumeProfile, error) {
	if err := ctx.Err(); err != nil {
		return types.VolumeProfile{}, err
	}
	if s.Len() < a.cfg.MinCandles {
		return types.VolumeProfile{}, &types.InsufficientDataError{Analyzer: Name, Need: a.cfg.MinCandles, Got: s.Len()}
	}
	win := s.Tail(a.cfg.Lookback)
	closes := win.Closes()
	lo, hi := ta.MinMax(closes)

	n := a.cfg.Bins
	if hi == lo {
		n = 1
	}
	width := (hi - lo) / float64(n)
	bins := make([]types.VolumeBin, n)
	for i := range bins {
		bins[i].Low = lo + width*float64(i)
		bins[i].High = lo + width*float64(i+1)
	}
	bins[n-1].High = hi

	var total float64
	for _, c := range win.Candles {
		idx := 0
		if width > 0 {
			idx = int((c.Close - lo) / width)
		}
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Volume += c.Vol
		total += c.Vol
	}
	if total == 0 {
		return types.VolumeProfile{}, &types.InsufficientDataError{Analyzer: Name, Reason: "no traded volume in window"}
	}

	poc := 0
	for i := range bins {
		if bins[i].Volume > bins[poc].Volume {
			poc = i
		}
	}
	val, vah, acc := valueArea(bins, poc, total*a.cfg.ValueAreaPct)

	vp := types.VolumeProfile{
		POC:             (bins[poc].Low + bins[poc].High) / 2,
		ValueAreaLow:    bins[val].Low,
		ValueAreaHigh:   bins[vah].High,
		CurrentPrice:    currentPrice,
		ValueAreaVolume: acc,
		TotalVolume:     total,
		Bins:            bins,
		POCIndex:        poc,
		VALIndex:        val,
		VAHIndex:        vah,
	}
	switch {
	case currentPrice < vp.ValueAreaLow:
		vp.Position = types.BelowValue
	case currentPrice > vp.ValueAreaHigh:
		vp.Position = types.AboveValue
	default:
		vp.Position = types.InsideValue
	}
	return vp, nil
}

// valueArea grows outward from the POC, one bin per step, taking the heavier
// neighbour (the lower one on ties) until target volume is reached.
func valueArea(bins []types.VolumeBin, poc int, target float64) (lo, hi int, acc float64) {
	lo, hi = poc, poc
	acc = bins[poc].Volume
	for acc < target && (lo > 0 || hi < len(bins)-1) {
		down, up := -1.0, -1.0
		if lo > 0 {
			down = bins[lo-1].Volume
		}
		if hi < len(bins)-1 {
			up = bins[hi+1].Volume
		}
		if down >= up {
			lo--
			acc += down
		} else {
			hi++
			acc += up
		}
	}
	return lo, hi, acc
}
