package risk

import (
	"errors"

	"github.com/shopspring/decimal"

	"signal-engine/internal/types"
)

// MaxAccountShare caps a single position's notional.
const MaxAccountShare = 0.10

var ErrInvalidStop = errors.New("stop price equals entry")

type PositionSize struct {
	Units      decimal.Decimal `json:"units"`
	Notional   decimal.Decimal `json:"notional"`
	RiskAmount decimal.Decimal `json:"risk_amount"`
	AccountPct decimal.Decimal `json:"account_pct"`
	Capped     bool            `json:"capped"`
}

// Size risks riskPerTrade of account between entry and stop, never letting the
// notional exceed MaxAccountShare of the account.
func Size(account, riskPerTrade, entry, stop float64) (PositionSize, error) {
	acct := decimal.NewFromFloat(account)
	px := decimal.NewFromFloat(entry)
	priceRisk := px.Sub(decimal.NewFromFloat(stop)).Abs()
	if priceRisk.IsZero() || !px.IsPositive() || !acct.IsPositive() {
		return PositionSize{}, ErrInvalidStop
	}
	riskAmt := acct.Mul(decimal.NewFromFloat(riskPerTrade))
	units := riskAmt.Div(priceRisk)

	out := PositionSize{RiskAmount: riskAmt}
	limit := acct.Mul(decimal.NewFromFloat(MaxAccountShare))
	if units.Mul(px).GreaterThan(limit) {
		units = limit.Div(px)
		out.Capped = true
	}
	out.Units = units.Round(8)
	out.Notional = units.Mul(px).Round(2)
	out.AccountPct = units.Mul(px).Div(acct).Mul(decimal.NewFromInt(100)).Round(2)
	return out, nil
}

// Params returns the adaptive trading parameters for a regime.
func Params(r types.Regime) types.AdaptiveParams {
	switch r {
	case types.RegimeBull:
		return types.AdaptiveParams{PositionMultiplier: 1.2, StopLossDistance: 0.02, TakeProfitDistance: 0.06, ConfidenceThreshold: 0.6}
	case types.RegimeBear:
		return types.AdaptiveParams{PositionMultiplier: 0.8, StopLossDistance: 0.015, TakeProfitDistance: 0.04, ConfidenceThreshold: 0.75}
	case types.RegimeVolatile:
		return types.AdaptiveParams{PositionMultiplier: 0.5, StopLossDistance: 0.03, TakeProfitDistance: 0.08, ConfidenceThreshold: 0.8}
	}
	return types.AdaptiveParams{PositionMultiplier: 1.0, StopLossDistance: 0.02, TakeProfitDistance: 0.05, ConfidenceThreshold: 0.7}
}

// ClassifyRegime labels the market from the trend score and volatility state.
func ClassifyRegime(trend float64, state types.VolatilityState) types.Regime {
	switch {
	case state == types.VolExtreme || state == types.VolHigh:
		return types.RegimeVolatile
	case trend >= 0.7:
		return types.RegimeBull
	case trend <= -0.7:
		return types.RegimeBear
	}
	return types.RegimeSideways
}
