package marketdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"

	"signal-engine/internal/types"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatKite Format = "kite"
	// FormatKiteTicks is a JSON array of full-mode ticks, folded into
	// candles of the series timeframe.
	FormatKiteTicks Format = "kite-ticks"
)

// FormatFor guesses the format from the file extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// LoadSeries reads a candle file. symbol and timeframe fill in whatever the
// file itself does not carry.
func LoadSeries(path string, format Format, symbol, timeframe string) (types.CandleSeries, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.CandleSeries{}, err
	}
	var s types.CandleSeries
	switch format {
	case FormatCSV:
		s.Candles, err = ParseCSV(b)
	case FormatKite:
		var hist []kiteconnect.HistoricalData
		if err = json.Unmarshal(b, &hist); err == nil {
			s.Candles = FromHistorical(hist)
		}
	case FormatKiteTicks:
		var every time.Duration
		if every, err = Interval(timeframe); err != nil {
			return types.CandleSeries{}, err
		}
		var ticks []models.Tick
		if err = json.Unmarshal(b, &ticks); err == nil {
			s.Candles = Aggregate(ticks, every)
		}
	case FormatJSON, "":
		s, err = ParseJSON(b)
	default:
		return types.CandleSeries{}, fmt.Errorf("unknown candle format %q", format)
	}
	if err != nil {
		return types.CandleSeries{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.Symbol == "" {
		s.Symbol = symbol
	}
	if s.Timeframe == "" {
		s.Timeframe = timeframe
	}
	return s, nil
}

// ParseJSON accepts either a full series object or a bare candle array.
func ParseJSON(b []byte) (types.CandleSeries, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var cs []types.Candle
		if err := json.Unmarshal(b, &cs); err != nil {
			return types.CandleSeries{}, err
		}
		return types.CandleSeries{Candles: cs}, nil
	}
	var s types.CandleSeries
	err := json.Unmarshal(b, &s)
	return s, err
}

// ParseCSV reads candles from a headed CSV with ts,open,high,low,close,volume columns.
func ParseCSV(b []byte) ([]types.Candle, error) {
	var cs []types.Candle
	if err := gocsv.Unmarshal(bytes.NewReader(b), &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// Interval parses a timeframe such as 15m, 1h or 1d.
func Interval(timeframe string) (time.Duration, error) {
	if n, ok := strings.CutSuffix(timeframe, "d"); ok {
		days, err := strconv.Atoi(n)
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid timeframe %q", timeframe)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(timeframe)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", timeframe)
	}
	return d, nil
}

// LoadOrderBook reads a snapshot in the engine's own layout or a Kite
// market-depth block (buy/sell arrays).
func LoadOrderBook(path string) (*types.OrderBookSnapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var probe struct {
		Buy  json.RawMessage `json:"buy"`
		Sell json.RawMessage `json:"sell"`
		Ts   int64           `json:"ts"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if probe.Buy != nil || probe.Sell != nil {
		var d models.Depth
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return BookFromDepth(d, probe.Ts), nil
	}
	var book types.OrderBookSnapshot
	if err := json.Unmarshal(b, &book); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &book, nil
}
