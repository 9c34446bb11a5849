package engineobs

import (
	"context"
	"errors"
	"time"

	"signal-engine/internal/interfaces"
	"signal-engine/internal/logger"
	"signal-engine/internal/metrics"
	"signal-engine/internal/trace"
	"signal-engine/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

// Wrap adds a span, structured logs and metrics around every evaluation.
func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Evaluate(ctx context.Context, series types.CandleSeries, book *types.OrderBookSnapshot, drawdown *float64) (*types.Signal, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Evaluate")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting evaluation",
		"symbol", series.Symbol,
		"candles", series.Len(),
		"has_book", !book.Empty(),
	)

	sig, err := oe.engine.Evaluate(ctx, series, book, drawdown)
	elapsed := time.Since(start)
	metrics.EvaluationLatency.Observe(elapsed.Seconds())
	if err != nil {
		metrics.EvaluationErrors.WithLabelValues(reason(err)).Inc()
		span.RecordError(err)
		logger.ErrorWithErrSkip(ctx, 1, "Evaluation failed", err,
			"symbol", series.Symbol,
			"duration_ms", elapsed.Milliseconds(),
		)
		return nil, err
	}

	metrics.Evaluations.WithLabelValues(string(sig.Action)).Inc()
	metrics.RiskScore.WithLabelValues(series.Symbol).Set(sig.RiskScore)
	for _, name := range sig.Unavailable {
		metrics.AnalyzerFailures.WithLabelValues(name).Inc()
	}

	logger.InfoSkip(ctx, 1, "Evaluation completed",
		"symbol", series.Symbol,
		"action", sig.Action,
		"confidence", sig.Confidence,
		"risk_score", sig.RiskScore,
		"net_score", sig.NetScore,
		"unavailable", sig.Unavailable,
		"duration_ms", elapsed.Milliseconds(),
	)

	return sig, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, types.ErrInvalidSeries):
		return "invalid_series"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline"
	}
	return "other"
}
