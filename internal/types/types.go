package types

type Candle struct {
	Ts    int64   `json:"ts" csv:"ts"`
	Open  float64 `json:"open" csv:"open"`
	High  float64 `json:"high" csv:"high"`
	Low   float64 `json:"low" csv:"low"`
	Close float64 `json:"close" csv:"close"`
	Vol   float64 `json:"volume" csv:"volume"`
}

type OrderBookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBookSnapshot holds bids sorted by descending price and asks sorted by
// ascending price.
type OrderBookSnapshot struct {
	Bids []OrderBookLevel `json:"bids"`
	Asks []OrderBookLevel `json:"asks"`
	Ts   int64            `json:"ts"`
}

type Bias string

const (
	Bullish Bias = "bullish"
	Bearish Bias = "bearish"
	Neutral Bias = "neutral"
)

func (b Bias) Sign() int {
	switch b {
	case Bullish:
		return 1
	case Bearish:
		return -1
	}
	return 0
}

func BiasOf(v float64) Bias {
	switch {
	case v > 0:
		return Bullish
	case v < 0:
		return Bearish
	}
	return Neutral
}

type PatternType string

const (
	HeadAndShoulders    PatternType = "head_and_shoulders"
	DoubleTop           PatternType = "double_top"
	DoubleBottom        PatternType = "double_bottom"
	AscendingTriangle   PatternType = "ascending_triangle"
	DescendingTriangle  PatternType = "descending_triangle"
	SymmetricalTriangle PatternType = "symmetrical_triangle"
	Flag                PatternType = "flag"
)

// PatternTypes lists every pattern kind in scan order.
var PatternTypes = []PatternType{
	HeadAndShoulders, DoubleTop, DoubleBottom,
	AscendingTriangle, DescendingTriangle, SymmetricalTriangle, Flag,
}

// Rank is the position of t in PatternTypes, used for stable ordering.
func (t PatternType) Rank() int {
	for i, p := range PatternTypes {
		if p == t {
			return i
		}
	}
	return len(PatternTypes)
}

type PatternMatch struct {
	Type         PatternType `json:"pattern_type"`
	Bias         Bias        `json:"bias"`
	Confidence   float64     `json:"confidence"`
	Target       *float64    `json:"target_price,omitempty"`
	Invalidation *float64    `json:"invalidation_price,omitempty"`
	Span         int         `json:"span"`
	DetectedAt   int64       `json:"detected_at"`
	StartIndex   int         `json:"-"`
	EndIndex     int         `json:"-"`
}

type OrderFlowMetrics struct {
	BuyPressure    float64 `json:"buy_pressure"`
	BidAskRatio    float64 `json:"bid_ask_ratio"`
	SpreadPct      float64 `json:"spread_pct"`
	LiquidityScore float64 `json:"liquidity_score"`
	Bias           Bias    `json:"bias"`
	Available      bool    `json:"available"`
}

type PricePosition string

const (
	BelowValue  PricePosition = "below_value"
	InsideValue PricePosition = "inside_value"
	AboveValue  PricePosition = "above_value"
)

type VolumeBin struct {
	Low, High, Volume float64
}

type VolumeProfile struct {
	POC             float64       `json:"poc"`
	ValueAreaHigh   float64       `json:"value_area_high"`
	ValueAreaLow    float64       `json:"value_area_low"`
	CurrentPrice    float64       `json:"current_price"`
	Position        PricePosition `json:"price_position"`
	ValueAreaVolume float64       `json:"value_area_volume"`
	TotalVolume     float64       `json:"total_volume"`
	Bins            []VolumeBin   `json:"-"`
	POCIndex        int           `json:"-"`
	VALIndex        int           `json:"-"`
	VAHIndex        int           `json:"-"`
}

type TrendScores struct {
	Trend      float64 `json:"trend"`
	Momentum   float64 `json:"momentum"`
	Volatility float64 `json:"volatility"`
	Volume     float64 `json:"volume"`

	EMAFast        float64 `json:"ema_fast"`
	EMAMid         float64 `json:"ema_mid"`
	EMASlow        float64 `json:"ema_slow"`
	RSI            float64 `json:"rsi"`
	StochK         float64 `json:"stoch_k"`
	MACDHist       float64 `json:"macd_hist"`
	MACDCross      string  `json:"macd_cross"`
	BBPosition     float64 `json:"bb_position"`
	ATRPercent     float64 `json:"atr_pct"`
	RelativeVolume float64 `json:"relative_volume"`
	OBVRising      bool    `json:"obv_rising"`
}

type PredictionResult struct {
	Direction  Bias     `json:"direction"`
	Confidence float64  `json:"confidence"`
	Net        int      `json:"net"`
	Factors    []string `json:"contributing_factors"`
	Volatility float64  `json:"volatility"`
}

type VolatilityState string

const (
	VolNormal  VolatilityState = "normal"
	VolHigh    VolatilityState = "high"
	VolExtreme VolatilityState = "extreme"
)

type RiskAssessment struct {
	Score          float64         `json:"risk_score"`
	VolatilityRisk float64         `json:"volatility_risk"`
	LiquidityRisk  float64         `json:"liquidity_risk"`
	DrawdownRisk   float64         `json:"drawdown_risk"`
	Volatility     float64         `json:"volatility"`
	State          VolatilityState `json:"volatility_state"`
	Multiplier     float64         `json:"multiplier"`
	ReducePosition bool            `json:"reduce_position"`
}

type LevelPosition string

const (
	NearSupport    LevelPosition = "near_support"
	NearResistance LevelPosition = "near_resistance"
	MidRange       LevelPosition = "mid_range"
)

type Levels struct {
	Support            float64       `json:"nearest_support"`
	Resistance         float64       `json:"nearest_resistance"`
	SupportDistance    float64       `json:"support_distance"`
	ResistanceDistance float64       `json:"resistance_distance"`
	Position           LevelPosition `json:"position"`
}

type Regime string

const (
	RegimeBull     Regime = "bull"
	RegimeBear     Regime = "bear"
	RegimeSideways Regime = "sideways"
	RegimeVolatile Regime = "volatile"
)

type AdaptiveParams struct {
	PositionMultiplier  float64 `json:"position_size_multiplier"`
	StopLossDistance    float64 `json:"stop_loss_distance"`
	TakeProfitDistance  float64 `json:"take_profit_distance"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
	Hold Action = "hold"
)

type Signal struct {
	Symbol         string   `json:"symbol,omitempty"`
	AsOf           int64    `json:"as_of"`
	Action         Action   `json:"action"`
	Confidence     float64  `json:"confidence"`
	RiskScore      float64  `json:"risk_score"`
	NetScore       float64  `json:"net_score"`
	ReducePosition bool     `json:"reduce_position"`
	Reasoning      []string `json:"reasoning"`
	Unavailable    []string `json:"unavailable,omitempty"`

	Trend         *TrendScores      `json:"trend,omitempty"`
	Patterns      []PatternMatch    `json:"patterns"`
	OrderFlow     *OrderFlowMetrics `json:"order_flow,omitempty"`
	VolumeProfile *VolumeProfile    `json:"volume_profile,omitempty"`
	Prediction    *PredictionResult `json:"prediction,omitempty"`
	Risk          *RiskAssessment   `json:"risk,omitempty"`
	Levels        *Levels           `json:"levels,omitempty"`
	Regime        Regime            `json:"regime,omitempty"`
	Params        *AdaptiveParams   `json:"params,omitempty"`
}
