package pattern

import "github.com/creasty/defaults"

type Config struct {
	MinCandles        int     `yaml:"min_candles" default:"20" validate:"gte=5"`
	Lookback          int     `yaml:"lookback" default:"50" validate:"gtefield=MinCandles"`
	SwingWindow       int     `yaml:"swing_window" default:"3" validate:"gte=1,lte=10"`
	HeadProminence    float64 `yaml:"head_prominence" default:"0.01" validate:"gte=0,lt=1"`
	ShoulderTolerance float64 `yaml:"shoulder_tolerance" default:"0.03" validate:"gt=0,lt=1"`
	DoubleTolerance   float64 `yaml:"double_tolerance" default:"0.02" validate:"gt=0,lt=1"`
	MinDepth          float64 `yaml:"min_depth" default:"0.01" validate:"gte=0,lt=1"`
	MinSeparation     int     `yaml:"min_separation" default:"3" validate:"gte=1"`
	TriangleWindow    int     `yaml:"triangle_window" default:"20" validate:"gte=10"`
	FlatSlope         float64 `yaml:"flat_slope" default:"0.0005" validate:"gt=0"`
	TrendSlope        float64 `yaml:"trend_slope" default:"0.001" validate:"gtfield=FlatSlope"`
	PoleCandles       int     `yaml:"pole_candles" default:"15" validate:"gte=3"`
	FlagCandles       int     `yaml:"flag_candles" default:"8" validate:"gte=3,ltfield=PoleCandles"`
	PoleMove          float64 `yaml:"pole_move" default:"0.05" validate:"gt=0"`
	FlagRange         float64 `yaml:"flag_range" default:"0.03" validate:"gt=0"`
}

func DefaultConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}
