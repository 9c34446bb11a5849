package interfaces

import (
	"context"

	"signal-engine/internal/types"
)

type Engine interface {
	Evaluate(ctx context.Context, series types.CandleSeries, book *types.OrderBookSnapshot, drawdown *float64) (*types.Signal, error)
}
