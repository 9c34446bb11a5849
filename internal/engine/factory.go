package engine

import (
	"signal-engine/internal/interfaces"
	"signal-engine/internal/store"
)

// New builds an engine from cfg. A nil cfg uses the defaults.
func New(cfg *store.Config) interfaces.Engine {
	if cfg == nil {
		cfg = store.Default()
	}
	return newEngine(cfg)
}
