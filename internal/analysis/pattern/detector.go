package pattern

import (
	"context"
	"math"
	"sort"

	"github.com/markcheno/go-talib"

	"signal-engine/internal/ta"
	"signal-engine/internal/types"
)

const Name = "pattern"

const (
	confReversal     = 0.75
	confSymmetryBump = 0.05
	confTriangle     = 0.70
	confSymmetrical  = 0.65
	confFlag         = 0.75

	symmetryBonusBelow = 0.01
	invalidationPad    = 0.03
	triangleTargetPad  = 0.05
	flagInvalidation   = 0.02
	symmetricalRatio   = 0.5
)

// Detector matches chart patterns over the trailing window of a series.
type Detector struct {
	cfg Config
}

func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// window is the scanned slice of the series with indices relative to its start.
type window struct {
	highs, lows, closes []float64
	ts                  []int64
	offset              int
}

func newWindow(s types.CandleSeries, lookback int) *window {
	tail := s.Tail(lookback)
	w := &window{
		highs:  tail.Highs(),
		lows:   tail.Lows(),
		closes: tail.Closes(),
		ts:     make([]int64, tail.Len()),
		offset: s.Len() - tail.Len(),
	}
	for i, c := range tail.Candles {
		w.ts[i] = c.Ts
	}
	return w
}

func (w *window) match(t types.PatternType, b types.Bias, conf float64, start, end int, target, inval *float64) types.PatternMatch {
	return types.PatternMatch{
		Type:         t,
		Bias:         b,
		Confidence:   ta.Clamp01(conf),
		Target:       target,
		Invalidation: inval,
		Span:         end - start + 1,
		DetectedAt:   w.ts[end],
		StartIndex:   start + w.offset,
		EndIndex:     end + w.offset,
	}
}

// Detect runs one scan per pattern family. Series shorter than MinCandles
// yield an empty result together with an InsufficientDataError.
func (d *Detector) Detect(ctx context.Context, s types.CandleSeries) ([]types.PatternMatch, error) {
	out := []types.PatternMatch{}
	if s.Len() < d.cfg.MinCandles {
		return out, &types.InsufficientDataError{Analyzer: Name, Need: d.cfg.MinCandles, Got: s.Len()}
	}
	w := newWindow(s, d.cfg.Lookback)
	scans := []func(*window) []types.PatternMatch{
		d.headAndShoulders,
		d.doubleTops,
		d.doubleBottoms,
		d.triangles,
		d.flag,
	}
	for _, scan := range scans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, scan(w)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EndIndex != out[j].EndIndex {
			return out[i].EndIndex > out[j].EndIndex
		}
		if out[i].Type.Rank() != out[j].Type.Rank() {
			return out[i].Type.Rank() < out[j].Type.Rank()
		}
		return out[i].StartIndex > out[j].StartIndex
	})
	return out, nil
}

// headAndShoulders walks swing-high triples from the most recent backwards so
// the triple nearest the current bar is accepted first.
func (d *Detector) headAndShoulders(w *window) []types.PatternMatch {
	peaks := ta.SwingHighs(w.highs, d.cfg.SwingWindow)
	var out []types.PatternMatch
	taken := math.MaxInt
	for i := len(peaks) - 1; i >= 2; i-- {
		ls, head, rs := peaks[i-2], peaks[i-1], peaks[i]
		if rs.Index >= taken {
			continue
		}
		prom := 1 + d.cfg.HeadProminence
		if head.Value < ls.Value*prom || head.Value < rs.Value*prom {
			continue
		}
		shoulder := math.Max(ls.Value, rs.Value)
		diff := math.Abs(ls.Value-rs.Value) / shoulder
		if diff > d.cfg.ShoulderTolerance {
			continue
		}
		neck := minIn(w.lows, ls.Index, rs.Index)
		conf := confReversal
		if diff < symmetryBonusBelow {
			conf += confSymmetryBump
		}
		target := math.Max(0, neck-(head.Value-neck))
		inval := shoulder * (1 + invalidationPad)
		out = append(out, w.match(types.HeadAndShoulders, types.Bearish, conf, ls.Index, rs.Index, &target, &inval))
		taken = ls.Index
	}
	return out
}

func (d *Detector) doubleTops(w *window) []types.PatternMatch {
	peaks := ta.SwingHighs(w.highs, d.cfg.SwingWindow)
	var out []types.PatternMatch
	taken := math.MaxInt
	for i := len(peaks) - 1; i >= 1; i-- {
		a, b := peaks[i-1], peaks[i]
		if b.Index >= taken || b.Index-a.Index < d.cfg.MinSeparation {
			continue
		}
		hi, lo := math.Max(a.Value, b.Value), math.Min(a.Value, b.Value)
		if (hi-lo)/hi > d.cfg.DoubleTolerance {
			continue
		}
		if maxIn(w.highs, a.Index+1, b.Index-1) > lo {
			continue
		}
		neck := minIn(w.lows, a.Index, b.Index)
		if (lo-neck)/lo < d.cfg.MinDepth {
			continue
		}
		target := math.Max(0, neck-(hi-neck))
		inval := hi * (1 + invalidationPad)
		out = append(out, w.match(types.DoubleTop, types.Bearish, confReversal, a.Index, b.Index, &target, &inval))
		taken = a.Index
	}
	return out
}

func (d *Detector) doubleBottoms(w *window) []types.PatternMatch {
	troughs := ta.SwingLows(w.lows, d.cfg.SwingWindow)
	var out []types.PatternMatch
	taken := math.MaxInt
	for i := len(troughs) - 1; i >= 1; i-- {
		a, b := troughs[i-1], troughs[i]
		if b.Index >= taken || b.Index-a.Index < d.cfg.MinSeparation {
			continue
		}
		hi, lo := math.Max(a.Value, b.Value), math.Min(a.Value, b.Value)
		if (hi-lo)/hi > d.cfg.DoubleTolerance {
			continue
		}
		if minIn(w.lows, a.Index+1, b.Index-1) < hi {
			continue
		}
		neck := maxIn(w.highs, a.Index, b.Index)
		if (neck-hi)/hi < d.cfg.MinDepth {
			continue
		}
		target := neck + (neck - lo)
		inval := lo * (1 - invalidationPad)
		out = append(out, w.match(types.DoubleBottom, types.Bullish, confReversal, a.Index, b.Index, &target, &inval))
		taken = a.Index
	}
	return out
}

// triangles fits least-squares lines to the highs and lows of the trailing
// window. Slopes are per bar, as a fraction of the mean close.
func (d *Detector) triangles(w *window) []types.PatternMatch {
	n, tw := len(w.closes), d.cfg.TriangleWindow
	if n < tw {
		return nil
	}
	start, end := n-tw, n-1
	highs, lows := w.highs[start:], w.lows[start:]
	mean := ta.Mean(w.closes[start:])
	if !(mean > 0) {
		return nil
	}
	hs, ls := slope(highs)/mean, slope(lows)/mean
	flat, trend := d.cfg.FlatSlope, d.cfg.TrendSlope

	switch {
	case math.Abs(hs) < flat && ls > trend:
		_, resistance := ta.MinMax(highs)
		target := resistance * (1 + triangleTargetPad)
		inval := w.lows[end] * (1 - invalidationPad)
		return []types.PatternMatch{w.match(types.AscendingTriangle, types.Bullish, confTriangle, start, end, &target, &inval)}
	case math.Abs(ls) < flat && hs < -trend:
		support, _ := ta.MinMax(lows)
		target := support * (1 - triangleTargetPad)
		inval := w.highs[end] * (1 + invalidationPad)
		return []types.PatternMatch{w.match(types.DescendingTriangle, types.Bearish, confTriangle, start, end, &target, &inval)}
	case hs < -trend && ls > trend:
		if math.Min(-hs, ls)/math.Max(-hs, ls) < symmetricalRatio {
			return nil
		}
		return []types.PatternMatch{w.match(types.SymmetricalTriangle, types.Neutral, confSymmetrical, start, end, nil, nil)}
	}
	return nil
}

// flag looks for a pole of PoleCandles bars followed by a tight range over the
// trailing FlagCandles bars.
func (d *Detector) flag(w *window) []types.PatternMatch {
	n, pc, fc := len(w.closes), d.cfg.PoleCandles, d.cfg.FlagCandles
	if n < pc+fc {
		return nil
	}
	poleStart, poleEnd := n-fc-pc, n-fc
	base := w.closes[poleStart]
	if base <= 0 {
		return nil
	}
	move := (w.closes[poleEnd] - base) / base
	if math.Abs(move) <= d.cfg.PoleMove {
		return nil
	}
	lo, hi := ta.MinMax(w.closes[poleEnd:])
	if (hi-lo)/ta.Mean(w.closes[poleEnd:]) >= d.cfg.FlagRange {
		return nil
	}
	height := math.Abs(w.closes[poleEnd] - base)
	_, flagHigh := ta.MinMax(w.highs[poleEnd:])
	flagLow, _ := ta.MinMax(w.lows[poleEnd:])

	var target, inval float64
	bias := types.Bullish
	if move > 0 {
		target = flagHigh + height
		inval = flagLow * (1 - flagInvalidation)
	} else {
		bias = types.Bearish
		target = math.Max(0, flagLow-height)
		inval = flagHigh * (1 + flagInvalidation)
	}
	return []types.PatternMatch{w.match(types.Flag, bias, confFlag, poleStart, n-1, &target, &inval)}
}

// Strongest picks the highest-confidence match, preferring the most recent on ties.
func Strongest(matches []types.PatternMatch) (types.PatternMatch, bool) {
	if len(matches) == 0 {
		return types.PatternMatch{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		switch {
		case m.Confidence > best.Confidence:
			best = m
		case m.Confidence == best.Confidence && m.EndIndex > best.EndIndex:
			best = m
		case m.Confidence == best.Confidence && m.EndIndex == best.EndIndex && m.Type.Rank() < best.Type.Rank():
			best = m
		}
	}
	return best, true
}

// slope is the least-squares slope of vals against bar index.
func slope(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	out := talib.LinearRegSlope(vals, len(vals))
	return out[len(out)-1]
}

func minIn(vals []float64, from, to int) float64 {
	m := math.Inf(1)
	for i := from; i <= to && i < len(vals); i++ {
		m = math.Min(m, vals[i])
	}
	return m
}

func maxIn(vals []float64, from, to int) float64 {
	m := math.Inf(-1)
	for i := from; i <= to && i < len(vals); i++ {
		m = math.Max(m, vals[i])
	}
	return m
}
