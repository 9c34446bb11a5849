package types

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidOrderBook = errors.New("invalid order book")
	ErrRiskUnavailable  = errors.New("risk unavailable")
	ErrInvalidSeries    = errors.New("invalid candle series")
)

// InsufficientDataError is returned when an analyzer's minimum window is unmet.
type InsufficientDataError struct {
	Analyzer string
	Need     int
	Got      int
	Reason   string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Analyzer, e.Reason)
	}
	return fmt.Sprintf("%s: need %d candles, got %d", e.Analyzer, e.Need, e.Got)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

type InvalidOrderBookError struct {
	Reason string
}

func (e *InvalidOrderBookError) Error() string { return "invalid order book: " + e.Reason }

func (e *InvalidOrderBookError) Is(target error) bool { return target == ErrInvalidOrderBook }

type RiskUnavailableError struct {
	Reason string
}

func (e *RiskUnavailableError) Error() string { return "risk unavailable: " + e.Reason }

func (e *RiskUnavailableError) Is(target error) bool { return target == ErrRiskUnavailable }
