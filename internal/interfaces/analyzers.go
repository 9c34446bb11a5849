package interfaces

import (
	"context"

	"signal-engine/internal/risk"
	"signal-engine/internal/types"
)

type PatternDetector interface {
	Detect(ctx context.Context, s types.CandleSeries) ([]types.PatternMatch, error)
}

type OrderFlowAnalyzer interface {
	Analyze(ctx context.Context, s types.CandleSeries, book *types.OrderBookSnapshot) (types.OrderFlowMetrics, error)
}

type VolumeProfileAnalyzer interface {
	Analyze(ctx context.Context, s types.CandleSeries, currentPrice float64) (types.VolumeProfile, error)
}

type TrendAnalyzer interface {
	Analyze(ctx context.Context, s types.CandleSeries) (types.TrendScores, error)
}

type Predictor interface {
	Predict(ctx context.Context, s types.CandleSeries) (types.PredictionResult, error)
}

// RiskAssessor is the only collaborator whose failure stops a trade.
type RiskAssessor interface {
	Assess(in risk.Input) (types.RiskAssessment, error)
	Volatility(s types.CandleSeries) float64
}
