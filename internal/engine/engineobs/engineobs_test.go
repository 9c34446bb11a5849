package engineobs

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"signal-engine/internal/engine"
	"signal-engine/internal/logger"
	"signal-engine/internal/metrics"
	"signal-engine/internal/types"
)

type fakeEngine struct {
	sig *types.Signal
	err error
}

func (f fakeEngine) Evaluate(context.Context, types.CandleSeries, *types.OrderBookSnapshot, *float64) (*types.Signal, error) {
	return f.sig, f.err
}

func TestWrapRecordsSignal(t *testing.T) {
	sig := &types.Signal{Action: types.Sell, RiskScore: 0.42, Unavailable: []string{"order_flow"}}
	eng := Wrap(fakeEngine{sig: sig})

	sells := testutil.ToFloat64(metrics.Evaluations.WithLabelValues("sell"))
	flows := testutil.ToFloat64(metrics.AnalyzerFailures.WithLabelValues("order_flow"))

	got, err := eng.Evaluate(context.Background(), types.CandleSeries{Symbol: "OBS"}, nil, nil)
	require.NoError(t, err)
	assert.Same(t, sig, got)

	assert.Equal(t, sells+1, testutil.ToFloat64(metrics.Evaluations.WithLabelValues("sell")))
	assert.Equal(t, flows+1, testutil.ToFloat64(metrics.AnalyzerFailures.WithLabelValues("order_flow")))
	assert.Equal(t, 0.42, testutil.ToFloat64(metrics.RiskScore.WithLabelValues("OBS")))
}

func TestWrapRecordsErrors(t *testing.T) {
	wrapped := errors.Join(types.ErrInvalidSeries)
	eng := Wrap(fakeEngine{err: wrapped})

	before := testutil.ToFloat64(metrics.EvaluationErrors.WithLabelValues("invalid_series"))
	got, err := eng.Evaluate(context.Background(), types.CandleSeries{}, nil, nil)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, types.ErrInvalidSeries)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EvaluationErrors.WithLabelValues("invalid_series")))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "canceled", reason(context.Canceled))
	assert.Equal(t, "deadline", reason(context.DeadlineExceeded))
	assert.Equal(t, "other", reason(errors.New("x")))
}

func TestWrapLogsStartOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Use(zap.New(core), true)
	t.Cleanup(func() { logger.Use(zap.NewNop(), false) })

	s := types.CandleSeries{Symbol: "LOG", Timeframe: "1h"}
	for i := 0; i < 60; i++ {
		c := 100 + 0.5*float64(i)
		s.Candles = append(s.Candles, types.Candle{Ts: int64(i+1) * 3600, Open: c, High: c + 0.3, Low: c - 0.3, Close: c, Vol: 1000})
	}
	dd := 0.0
	_, err := Wrap(engine.New(nil)).Evaluate(context.Background(), s, nil, &dd)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("Starting evaluation").Len())
	assert.Equal(t, 1, logs.FilterMessage("Fanning out analyzers").Len())
}
