package engine

import (
	"math"

	"signal-engine/internal/store"
	"signal-engine/internal/types"
)

// scoreInputs are the sub-signals the net score is built from. Nil blocks
// contribute nothing.
type scoreInputs struct {
	trend      *types.TrendScores
	pattern    *types.PatternMatch
	flow       types.OrderFlowMetrics
	position   types.PricePosition
	prediction *types.PredictionResult
}

// score returns the post-multiplier net score and whether the prediction
// agreed with it.
func score(w store.Synthesis, in scoreInputs) (float64, bool) {
	net := 0.0
	if t := in.trend; t != nil {
		net += t.Trend*w.TrendWeight +
			t.Momentum*w.MomentumWeight +
			t.Volatility*w.VolatilityWeight +
			t.Volume*w.VolumeWeight
	}
	if p := in.pattern; p != nil {
		net += p.Confidence * w.PatternWeight * float64(p.Bias.Sign())
	}
	if in.flow.Available {
		net += w.OrderFlowWeight * float64(in.flow.Bias.Sign())
	}
	switch in.position {
	case types.BelowValue:
		net += w.VolumeProfileWeight
	case types.AboveValue:
		net -= w.VolumeProfileWeight
	}

	boosted := false
	if p := in.prediction; p != nil {
		if dir := p.Direction.Sign(); dir != 0 && dir == sign(net) {
			net *= w.AgreementBoost
			boosted = true
		}
	}
	return net, boosted
}

type verdict struct {
	action     types.Action
	confidence float64
	tentative  float64
	reduce     bool
	gated      bool
}

// decide maps a net score and risk score to an action. Thresholds are
// strict: a net score equal to the threshold holds.
func decide(w store.Synthesis, net, riskScore float64) verdict {
	v := verdict{action: types.Hold, confidence: w.HoldConfidence}
	switch {
	case net > w.ActionThreshold:
		v.action = types.Buy
		v.confidence = math.Min(net/w.ConfidenceScale, 1)
	case net < -w.ActionThreshold:
		v.action = types.Sell
		v.confidence = math.Min(-net/w.ConfidenceScale, 1)
	}
	v.tentative = v.confidence

	if riskScore > w.RiskGate {
		v.reduce = true
		if v.confidence < w.GatedConfidence {
			v.gated = v.action != types.Hold
			v.action = types.Hold
			v.confidence = w.HoldConfidence
		}
	}
	return v
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
