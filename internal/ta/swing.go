package ta

// Swing is a local extremum at index Index with value Value.
type Swing struct {
	Index int
	Value float64
}

// SwingHighs finds bars whose value is strictly above the w bars before it and
// not below the w bars after it, so the first bar of a plateau wins.
func SwingHighs(vals []float64, w int) []Swing {
	return swings(vals, w, func(a, b float64) bool { return a > b })
}

// SwingLows mirrors SwingHighs for minima.
func SwingLows(vals []float64, w int) []Swing {
	return swings(vals, w, func(a, b float64) bool { return a < b })
}

func swings(vals []float64, w int, beats func(a, b float64) bool) []Swing {
	if w <= 0 {
		w = 1
	}
	var out []Swing
	for i := w; i < len(vals)-w; i++ {
		v := vals[i]
		ok := true
		for j := i - w; j < i && ok; j++ {
			ok = beats(v, vals[j])
		}
		for j := i + 1; j <= i+w && ok; j++ {
			ok = !beats(vals[j], v)
		}
		if ok {
			out = append(out, Swing{Index: i, Value: v})
		}
	}
	return out
}
