package levels

import (
	"math"

	"signal-engine/internal/ta"
	"signal-engine/internal/types"
)

const (
	Window   = 5
	NearPct  = 0.02
	fallback = 0.05
)

// Find returns the swing levels nearest the last close. Without swings on a
// side the level falls back to 5% away from price.
func Find(s types.CandleSeries) types.Levels {
	price := s.Last().Close
	res := nearest(ta.SwingHighs(s.Highs(), Window), price, price*(1+fallback))
	sup := nearest(ta.SwingLows(s.Lows(), Window), price, price*(1-fallback))

	lv := types.Levels{Support: sup, Resistance: res, Position: types.MidRange}
	if price > 0 {
		lv.ResistanceDistance = (res - price) / price
		lv.SupportDistance = (price - sup) / price
	}
	switch {
	case lv.ResistanceDistance < NearPct:
		lv.Position = types.NearResistance
	case lv.SupportDistance < NearPct:
		lv.Position = types.NearSupport
	}
	return lv
}

func nearest(sw []ta.Swing, price, dflt float64) float64 {
	if len(sw) == 0 {
		return dflt
	}
	best := sw[len(sw)-1].Value
	for i := len(sw) - 1; i >= 0; i-- {
		if math.Abs(sw[i].Value-price) < math.Abs(best-price) {
			best = sw[i].Value
		}
	}
	return best
}
