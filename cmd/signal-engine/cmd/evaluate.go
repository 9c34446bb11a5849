package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"signal-engine/internal/engine"
	"signal-engine/internal/engine/engineobs"
	"signal-engine/internal/logger"
	"signal-engine/internal/marketdata"
	"signal-engine/internal/metrics"
	"signal-engine/internal/risk"
	"signal-engine/internal/store"
	"signal-engine/internal/tradelog"
	"signal-engine/internal/types"
)

type evaluateOptions struct {
	candles      string
	format       string
	symbol       string
	timeframe    string
	orderBook    string
	drawdown     float64
	noDrawdown   bool
	equity       []float64
	configPath   string
	journalDir   string
	account      float64
	riskPerTrade float64
	timeout      time.Duration
	metricsOut   string
}

// evaluation is what the command prints.
type evaluation struct {
	Signal       *types.Signal      `json:"signal"`
	PositionSize *risk.PositionSize `json:"position_size,omitempty"`
}

func newEvaluateCmd() *cobra.Command {
	var o evaluateOptions
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one candle series and print the signal as JSON",
		Long: `Evaluate a candle series (JSON, CSV, Kite historical or Kite ticks) with an
optional order book and print the resulting signal.

Examples:
  signal-engine evaluate --candles btc.csv --drawdown 0.05
  signal-engine evaluate --candles infy.json --format kite --orderbook book.json --journal logs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.candles, "candles", "", "candle file (required)")
	f.StringVar(&o.format, "format", "", "candle format: json, csv, kite or kite-ticks (default from extension)")
	f.StringVar(&o.symbol, "symbol", "", "symbol when the file carries none")
	f.StringVar(&o.timeframe, "timeframe", "", "timeframe when the file carries none, e.g. 1h")
	f.StringVar(&o.orderBook, "orderbook", "", "order book snapshot or Kite depth JSON")
	f.Float64Var(&o.drawdown, "drawdown", 0, "current drawdown as a fraction of peak equity")
	f.BoolVar(&o.noDrawdown, "no-drawdown", false, "treat drawdown as unknown (forces hold)")
	f.Float64SliceVar(&o.equity, "equity", nil, "equity curve, oldest first; drawdown is taken from its peak")
	f.StringVar(&o.configPath, "config", "", "engine config YAML (defaults when empty)")
	f.StringVar(&o.journalDir, "journal", "", "append the signal to a JSON-lines journal in this directory")
	f.Float64Var(&o.account, "account", 0, "account equity for a position size advisory")
	f.Float64Var(&o.riskPerTrade, "risk-per-trade", 0.01, "fraction of account risked per trade")
	f.DurationVar(&o.timeout, "timeout", 0, "evaluation timeout (none when zero)")
	f.StringVar(&o.metricsOut, "metrics-out", "", "write engine metrics in Prometheus text format to this file")
	_ = cmd.MarkFlagRequired("candles")
	return cmd
}

func runEvaluate(cmd *cobra.Command, o evaluateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	cfg := store.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = store.LoadConfig(o.configPath); err != nil {
			return err
		}
	}

	format := marketdata.Format(o.format)
	if format == "" {
		format = marketdata.FormatFor(o.candles)
	}
	timeframe := o.timeframe
	if timeframe == "" {
		timeframe = cfg.Timeframe
	}
	series, err := marketdata.LoadSeries(o.candles, format, o.symbol, timeframe)
	if err != nil {
		return err
	}
	var book *types.OrderBookSnapshot
	if o.orderBook != "" {
		if book, err = marketdata.LoadOrderBook(o.orderBook); err != nil {
			return err
		}
	}
	var drawdown *float64
	if !o.noDrawdown {
		if len(o.equity) > 0 {
			var dd risk.DrawdownTracker
			for _, v := range o.equity {
				o.drawdown = dd.Update(v)
			}
			logger.Debug(ctx, "Drawdown from equity curve", "peak", dd.Peak(), "current", dd.Current(), "max", dd.Max())
		}
		drawdown = &o.drawdown
	}

	eng := engineobs.Wrap(engine.New(cfg))
	sig, err := eng.Evaluate(ctx, series, book, drawdown)
	if err != nil {
		return err
	}

	out := evaluation{Signal: sig}
	if o.account > 0 {
		out.PositionSize = advise(ctx, sig, series.Last().Close, o.account, o.riskPerTrade)
	}

	if o.journalDir != "" {
		j := tradelog.New(o.journalDir)
		now := time.Now()
		if err := j.AppendSignal(sig, now, out.PositionSize); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		if err := j.CompressOlder(cfg.Journal.RetentionDays, now); err != nil {
			logger.Warn(ctx, "Journal compression failed", "error", err)
		}
	}

	if o.metricsOut != "" {
		if err := writeMetrics(o.metricsOut); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// advise sizes a position for actionable signals, stopping out at the
// regime's stop distance.
func advise(ctx context.Context, sig *types.Signal, entry, account, riskPerTrade float64) *risk.PositionSize {
	if sig.Action == types.Hold || sig.Params == nil {
		return nil
	}
	stop := entry * (1 - sig.Params.StopLossDistance)
	if sig.Action == types.Sell {
		stop = entry * (1 + sig.Params.StopLossDistance)
	}
	size, err := risk.Size(account, riskPerTrade, entry, stop)
	if err != nil {
		logger.Warn(ctx, "Position sizing skipped", "error", err)
		return nil
	}
	return &size
}

func writeMetrics(path string) (err error) {
	mfs, err := metrics.Registry.Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return err
		}
	}
	return nil
}
