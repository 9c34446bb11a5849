package engine

import (
	"context"
	"fmt"
	"sync"

	"signal-engine/internal/analysis/levels"
	"signal-engine/internal/analysis/orderflow"
	"signal-engine/internal/analysis/pattern"
	"signal-engine/internal/analysis/predictor"
	"signal-engine/internal/analysis/trend"
	"signal-engine/internal/analysis/volprofile"
	"signal-engine/internal/interfaces"
	"signal-engine/internal/logger"
	"signal-engine/internal/risk"
	"signal-engine/internal/store"
	"signal-engine/internal/types"
)

type Engine struct {
	cfg       *store.Config
	patterns  interfaces.PatternDetector
	orderFlow interfaces.OrderFlowAnalyzer
	profile   interfaces.VolumeProfileAnalyzer
	trend     interfaces.TrendAnalyzer
	predictor interfaces.Predictor
	risk      interfaces.RiskAssessor
}

func newEngine(cfg *store.Config) *Engine {
	return &Engine{
		cfg:       cfg,
		patterns:  pattern.New(cfg.Pattern),
		orderFlow: orderflow.New(cfg.OrderFlow),
		profile:   volprofile.New(cfg.VolumeProfile),
		trend:     trend.New(cfg.Trend),
		predictor: predictor.New(cfg.Predictor),
		risk:      risk.New(cfg.Risk),
	}
}

// analysis is the joined output of one fan-out. A nil block means the
// analyzer failed and its error sits in failures.
type analysis struct {
	patterns   []types.PatternMatch
	orderFlow  types.OrderFlowMetrics
	profile    *types.VolumeProfile
	trend      *types.TrendScores
	prediction *types.PredictionResult
	failures   map[string]error
}

type result struct {
	name string
	val  any
	err  error
}

func (e *Engine) Evaluate(ctx context.Context, series types.CandleSeries, book *types.OrderBookSnapshot, drawdown *float64) (*types.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		logger.ErrorWithErr(ctx, "Rejected candle series", err, "symbol", series.Symbol)
		return nil, err
	}
	if series.Timeframe == "" {
		series.Timeframe = e.cfg.Timeframe
	}
	logger.Debug(ctx, "Fanning out analyzers", "symbol", series.Symbol, "candles", series.Len(), "has_book", !book.Empty())

	op := logger.StartOperation(ctx, "engine.analyzers", "symbol", series.Symbol)
	a, err := e.fanOut(op.Context(), series, book)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}
	op.End("failed", len(a.failures))
	for _, name := range analyzerOrder {
		if err := a.failures[name]; err != nil {
			logger.Debug(ctx, "Analyzer unavailable", "symbol", series.Symbol, "analyzer", name, "reason", err.Error())
		}
	}

	sig := e.synthesize(ctx, series, drawdown, a)
	logger.Decision(ctx, series.Symbol, string(sig.Action), sig.Confidence, joinReasons(sig.Reasoning))
	return sig, nil
}

// fanOut runs every analyzer concurrently and waits for all of them. The
// call fails only when ctx is cancelled before the join.
func (e *Engine) fanOut(ctx context.Context, s types.CandleSeries, book *types.OrderBookSnapshot) (*analysis, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	price := s.Last().Close
	jobs := []struct {
		name string
		run  func() (any, error)
	}{
		{pattern.Name, func() (any, error) { return e.patterns.Detect(ctx, s) }},
		{orderflow.Name, func() (any, error) { return e.orderFlow.Analyze(ctx, s, book) }},
		{volprofile.Name, func() (any, error) { return e.profile.Analyze(ctx, s, price) }},
		{trend.Name, func() (any, error) { return e.trend.Analyze(ctx, s) }},
		{predictor.Name, func() (any, error) { return e.predictor.Predict(ctx, s) }},
	}

	results := make(chan result, len(jobs))
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(name string, run func() (any, error)) {
			defer wg.Done()
			results <- call(name, run)
		}(j.name, j.run)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	close(results)

	a := &analysis{orderFlow: orderflow.Neutral(), failures: map[string]error{}}
	for r := range results {
		if r.err != nil {
			a.failures[r.name] = r.err
		}
		switch v := r.val.(type) {
		case []types.PatternMatch:
			a.patterns = v
		case types.OrderFlowMetrics:
			if r.err == nil {
				a.orderFlow = v
			}
		case types.VolumeProfile:
			if r.err == nil {
				a.profile = &v
			}
		case types.TrendScores:
			if r.err == nil {
				a.trend = &v
			}
		case types.PredictionResult:
			if r.err == nil {
				a.prediction = &v
			}
		}
	}
	if a.patterns == nil {
		a.patterns = []types.PatternMatch{}
	}
	return a, nil
}

// call runs one analyzer and turns a panic into an insufficient-data failure.
func call(name string, run func() (any, error)) (r result) {
	r.name = name
	defer func() {
		if p := recover(); p != nil {
			r.val = nil
			r.err = &types.InsufficientDataError{Analyzer: name, Reason: fmt.Sprintf("recovered from panic: %v", p)}
		}
	}()
	r.val, r.err = run()
	return r
}

// synthesize runs risk and turns the joined analysis into a Signal.
func (e *Engine) synthesize(ctx context.Context, s types.CandleSeries, drawdown *float64, a *analysis) *types.Signal {
	w := e.cfg.Synthesis
	last := s.Last()
	lv := levels.Find(s)

	sig := &types.Signal{
		Symbol:     s.Symbol,
		AsOf:       last.Ts,
		Patterns:   a.patterns,
		Trend:      a.trend,
		Prediction: a.prediction,
		Levels:     &lv,
	}
	flow := a.orderFlow
	sig.OrderFlow = &flow
	sig.VolumeProfile = a.profile
	for _, name := range analyzerOrder {
		if a.failures[name] != nil {
			sig.Unavailable = append(sig.Unavailable, name)
		}
	}

	in := scoreInputs{
		trend:      a.trend,
		flow:       a.orderFlow,
		prediction: a.prediction,
	}
	if m, ok := pattern.Strongest(a.patterns); ok {
		in.pattern = &m
	}
	if a.profile != nil {
		in.position = a.profile.Position
	}
	net, boosted := score(w, in)
	sig.NetScore = net

	assessment, riskErr := e.risk.Assess(risk.Input{
		Volatility: e.risk.Volatility(s),
		Liquidity:  a.orderFlow.LiquidityScore,
		Drawdown:   drawdown,
	})

	var r reasoner
	r.trend(a.trend, a.failures[trend.Name])
	r.patterns(in.pattern, len(a.patterns), a.failures[pattern.Name])
	r.orderFlow(a.orderFlow, a.failures[orderflow.Name])
	r.profile(a.profile, a.failures[volprofile.Name])
	r.prediction(a.prediction, boosted, a.failures[predictor.Name])

	if riskErr != nil {
		logger.Risk(ctx, s.Symbol, "RISK_UNAVAILABLE", "reason", riskErr.Error())
		sig.Action = types.Hold
		sig.Confidence = 0
		sig.RiskScore = 1
		r.add(riskErr.Error())
		sig.Reasoning = r.lines
		return sig
	}

	sig.Risk = &assessment
	sig.RiskScore = assessment.Score
	trendScore := 0.0
	if a.trend != nil {
		trendScore = a.trend.Trend
	}
	sig.Regime = risk.ClassifyRegime(trendScore, assessment.State)
	params := risk.Params(sig.Regime)
	sig.Params = &params

	v := decide(w, net, assessment.Score)
	sig.Action = v.action
	sig.Confidence = v.confidence
	sig.ReducePosition = v.reduce || assessment.ReducePosition
	r.risk(assessment, v, w)
	if v.gated {
		logger.Risk(ctx, s.Symbol, "RISK_GATE",
			"risk_score", assessment.Score,
			"tentative_confidence", v.tentative,
			"gate", w.GatedConfidence,
		)
	}

	if sig.Action == types.Hold && len(r.lines) == 0 {
		r.add("mixed signals, awaiting confirmation")
	}
	sig.Reasoning = r.lines
	return sig
}

// analyzerOrder is the fixed reporting order for failures.
var analyzerOrder = []string{trend.Name, pattern.Name, orderflow.Name, volprofile.Name, predictor.Name}
