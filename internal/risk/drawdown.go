package risk

import "sync"

// DrawdownTracker follows peak-to-trough decline of an equity curve. It is
// meant to live in the caller's session; the engine only reads the value
// passed to it.
type DrawdownTracker struct {
	mu      sync.Mutex
	peak    float64
	current float64
	max     float64
}

// Update records a new equity value and returns the current drawdown.
func (t *DrawdownTracker) Update(equity float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if equity > t.peak {
		t.peak = equity
	}
	t.current = 0
	if t.peak > 0 && equity < t.peak {
		t.current = (t.peak - equity) / t.peak
	}
	if t.current > t.max {
		t.max = t.current
	}
	return t.current
}

func (t *DrawdownTracker) Current() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *DrawdownTracker) Max() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.max
}

func (t *DrawdownTracker) Peak() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}
