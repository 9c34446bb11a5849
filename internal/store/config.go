package store

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"signal-engine/internal/analysis/orderflow"
	"signal-engine/internal/analysis/pattern"
	"signal-engine/internal/analysis/predictor"
	"signal-engine/internal/analysis/trend"
	"signal-engine/internal/analysis/volprofile"
	"signal-engine/internal/risk"
)

var validate = validator.New()

type Config struct {
	Timeframe     string            `yaml:"timeframe"`
	Pattern       pattern.Config    `yaml:"pattern"`
	OrderFlow     orderflow.Config  `yaml:"order_flow"`
	VolumeProfile volprofile.Config `yaml:"volume_profile"`
	Trend         trend.Config      `yaml:"trend"`
	Predictor     predictor.Config  `yaml:"predictor"`
	Risk          risk.Config       `yaml:"risk"`
	Synthesis     Synthesis         `yaml:"synthesis"`
	Journal       struct {
		Dir           string `yaml:"dir" default:"logs"`
		RetentionDays int    `yaml:"retention_days" default:"30" validate:"gte=0"`
	} `yaml:"journal"`
}

// Synthesis holds the weights and thresholds that turn analyzer output into
// an action.
type Synthesis struct {
	TrendWeight         float64 `yaml:"trend_weight" default:"0.25" validate:"gte=0"`
	MomentumWeight      float64 `yaml:"momentum_weight" default:"0.25" validate:"gte=0"`
	VolatilityWeight    float64 `yaml:"volatility_weight" default:"0.10" validate:"gte=0"`
	VolumeWeight        float64 `yaml:"volume_weight" default:"0.10" validate:"gte=0"`
	PatternWeight       float64 `yaml:"pattern_weight" default:"0.15" validate:"gte=0"`
	OrderFlowWeight     float64 `yaml:"order_flow_weight" default:"0.10" validate:"gte=0"`
	VolumeProfileWeight float64 `yaml:"volume_profile_weight" default:"0.05" validate:"gte=0"`
	AgreementBoost      float64 `yaml:"agreement_boost" default:"1.10" validate:"gte=1"`
	ActionThreshold     float64 `yaml:"action_threshold" default:"0.6" validate:"gt=0"`
	ConfidenceScale     float64 `yaml:"confidence_scale" default:"1.2" validate:"gt=0"`
	HoldConfidence      float64 `yaml:"hold_confidence" default:"0.5" validate:"gte=0,lte=1"`
	RiskGate            float64 `yaml:"risk_gate" default:"0.7" validate:"gt=0,lte=1"`
	GatedConfidence     float64 `yaml:"gated_confidence" default:"0.75" validate:"gt=0,lte=1"`
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Validate runs tag validation then the cross-section checks tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describe(err)
	}
	s := c.Synthesis
	const eps = 1e-9
	if trad := s.TrendWeight + s.MomentumWeight + s.VolatilityWeight + s.VolumeWeight; trad > 0.70+eps {
		return fmt.Errorf("synthesis: traditional weights sum to %.3f, max 0.70", trad)
	}
	if adv := s.PatternWeight + s.OrderFlowWeight + s.VolumeProfileWeight; adv > 0.30+eps {
		return fmt.Errorf("synthesis: advanced weights sum to %.3f, max 0.30", adv)
	}
	r := c.Risk
	if w := r.VolatilityWeight + r.LiquidityWeight + r.DrawdownWeight; math.Abs(w-1) > eps {
		return fmt.Errorf("risk: component weights sum to %.3f, want 1", w)
	}
	if c.Pattern.PoleCandles+c.Pattern.FlagCandles > c.Pattern.Lookback {
		return fmt.Errorf("pattern: pole_candles+flag_candles %d exceeds lookback %d",
			c.Pattern.PoleCandles+c.Pattern.FlagCandles, c.Pattern.Lookback)
	}
	return nil
}

func describe(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// LoadConfig applies defaults, overlays the YAML file and validates.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

func ParseConfig(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
