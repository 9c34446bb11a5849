package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"signal-engine/internal/store"
	"signal-engine/internal/types"
)

// reasoner collects reasoning lines in the order they are added.
type reasoner struct {
	lines []string
}

func (r *reasoner) add(line string) {
	r.lines = append(r.lines, line)
}

func (r *reasoner) addf(format string, args ...any) {
	r.add(fmt.Sprintf(format, args...))
}

func (r *reasoner) unavailable(what string, err error) {
	r.addf("%s unavailable: %s", what, err.Error())
}

func (r *reasoner) trend(t *types.TrendScores, err error) {
	if t == nil {
		if err != nil {
			r.unavailable("trend", err)
		}
		return
	}
	if t.Trend != 0 {
		r.addf("trend %s (%.2f): EMA %s / %s / %s",
			direction(t.Trend), t.Trend, price(t.EMAFast), price(t.EMAMid), price(t.EMASlow))
	}
	if t.Momentum != 0 {
		line := fmt.Sprintf("momentum %s (%.2f): RSI %.1f, stochastic %.1f",
			direction(t.Momentum), t.Momentum, t.RSI, t.StochK)
		if t.MACDCross != "" && t.MACDCross != "none" {
			line += ", MACD " + t.MACDCross + " crossover"
		}
		r.add(line)
	}
	if t.Volatility != 0 {
		r.addf("volatility %s (%.2f): band position %.2f, ATR %.2f%%",
			direction(t.Volatility), t.Volatility, t.BBPosition, t.ATRPercent)
	}
	if t.Volume != 0 {
		r.addf("volume %s (%.2f): %.2fx average", direction(t.Volume), t.Volume, t.RelativeVolume)
	}
}

func (r *reasoner) patterns(best *types.PatternMatch, n int, err error) {
	if best == nil {
		if err != nil {
			r.unavailable("patterns", err)
		}
		return
	}
	line := fmt.Sprintf("%s %s, confidence %.2f", best.Type, best.Bias, best.Confidence)
	if best.Target != nil {
		line += ", target " + price(*best.Target)
	}
	if best.Invalidation != nil {
		line += ", invalidation " + price(*best.Invalidation)
	}
	if n > 1 {
		line += fmt.Sprintf(" (%d patterns found)", n)
	}
	r.add(line)
}

func (r *reasoner) orderFlow(m types.OrderFlowMetrics, err error) {
	if !m.Available {
		if err != nil {
			r.unavailable("order flow", err)
		} else {
			r.add("order flow unavailable")
		}
		return
	}
	if m.Bias == types.Neutral {
		return
	}
	r.addf("order flow %s: buy pressure %.2f, bid/ask ratio %.2f, spread %.3f%%",
		m.Bias, m.BuyPressure, m.BidAskRatio, m.SpreadPct)
}

func (r *reasoner) profile(p *types.VolumeProfile, err error) {
	if p == nil {
		if err != nil {
			r.unavailable("volume profile", err)
		}
		return
	}
	switch p.Position {
	case types.BelowValue:
		r.addf("price %s below value area %s-%s, POC %s",
			price(p.CurrentPrice), price(p.ValueAreaLow), price(p.ValueAreaHigh), price(p.POC))
	case types.AboveValue:
		r.addf("price %s above value area %s-%s, POC %s",
			price(p.CurrentPrice), price(p.ValueAreaLow), price(p.ValueAreaHigh), price(p.POC))
	}
}

func (r *reasoner) prediction(p *types.PredictionResult, boosted bool, err error) {
	if p == nil {
		if err != nil {
			r.unavailable("prediction", err)
		}
		return
	}
	if p.Direction == types.Neutral {
		return
	}
	line := fmt.Sprintf("prediction %s (confidence %.2f)", p.Direction, p.Confidence)
	if len(p.Factors) > 0 {
		line += ": " + strings.Join(p.Factors, ", ")
	}
	if boosted {
		line += "; agrees with net score"
	}
	r.add(line)
}

func (r *reasoner) risk(a types.RiskAssessment, v verdict, w store.Synthesis) {
	if !v.reduce {
		return
	}
	r.addf("risk warning: score %.2f (%s volatility), reduce position", a.Score, a.State)
	if v.gated {
		r.addf("risk gate: confidence %.2f below %.2f, holding", v.tentative, w.GatedConfidence)
	}
}

func direction(x float64) string {
	if x > 0 {
		return "bullish"
	}
	return "bearish"
}

func price(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(2)
}

func joinReasons(lines []string) string {
	return strings.Join(lines, "; ")
}
