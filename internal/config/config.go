package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Symbol string `yaml:"symbol" default:"1000PEPEUSDT" validate:"required"`

	Exchange struct {
		WSEndpoint   string `yaml:"ws_endpoint" default:"wss://fstream.binance.com/ws" validate:"required,url"`
		RESTEndpoint string `yaml:"rest_endpoint" default:"https://fapi.binance.com" validate:"required,url"`
		Interval     string `yaml:"interval" default:"1m" validate:"oneof=1m 3m 5m 15m"`
		WindowSize   int    `yaml:"window_size" default:"60" validate:"gte=15,lte=500"`
	} `yaml:"exchange"`

	Engine struct {
		ADXThreshold        float64 `yaml:"adx_threshold" default:"25"`
		ClusterThresholdPct float64 `yaml:"cluster_threshold_pct" default:"0.05" validate:"gt=0"`
		AlignThresholdPct   float64 `yaml:"align_threshold_pct" default:"0.1" validate:"gt=0"`
		TriggerThresholdPct float64 `yaml:"trigger_threshold_pct" default:"0.1" validate:"gt=0"`
		MinConfidence       int     `yaml:"min_confidence" default:"60" validate:"gte=0,lte=100"`
		HighConfidence      int     `yaml:"high_confidence" default:"80" validate:"gte=0,lte=100,gtefield=MinConfidence"`
	} `yaml:"engine"`

	Governor struct {
		CooldownSec    int     `yaml:"cooldown_sec" default:"60" validate:"gte=0"`
		MaxCallsPerDay int     `yaml:"max_calls_per_day" default:"500" validate:"gt=0"`
		MaxEscalations int     `yaml:"max_escalations" default:"100" validate:"gte=0"`
		MaxSpendUSD    float64 `yaml:"max_spend_usd" default:"1.0" validate:"gt=0"`
	} `yaml:"governor"`

	Analysis struct {
		BaseURL          string  `yaml:"base_url" default:"https://api.x.ai/v1" validate:"required,url"`
		Model            string  `yaml:"model" default:"grok-4" validate:"required"`
		APIKey           string  `yaml:"api_key" validate:"required"`
		TimeoutSec       int     `yaml:"timeout_sec" default:"30" validate:"gt=0"`
		TechnicalCostUSD float64 `yaml:"technical_cost_usd" default:"0.00028" validate:"gt=0"`
		SentimentCostUSD float64 `yaml:"sentiment_cost_usd" default:"0.005" validate:"gt=0"`
	} `yaml:"analysis"`

	Trading struct {
		AccountBalance float64 `yaml:"account_balance" default:"1000" validate:"gt=0"`
		RiskPercent    float64 `yaml:"risk_percent" default:"0.2" validate:"gt=0,lte=100"`
		Leverage       int     `yaml:"leverage" default:"10" validate:"gte=1,lte=125"`
	} `yaml:"trading"`

	Telegram struct {
		Enabled  bool   `yaml:"enabled" default:"true"`
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Storage struct {
		Path string `yaml:"path" default:"data/pepebot.db" validate:"required"`
	} `yaml:"storage"`

	Server struct {
		Port int `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Load reads a YAML configuration file, fills defaults and validates the
// result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides secrets with environment
// variables, so tokens can stay out of the file.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if v := os.Getenv("GROK_API_KEY"); v != "" {
		c.Analysis.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		c.Symbol = strings.ToUpper(v)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate checks struct tags plus the constraints the tags cannot express.
func (c *Config) Validate() error {
	var verrs validator.ValidationErrors
	if err := validate.Struct(c); err != nil {
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, e := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return err
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram enabled but bot_token or chat_id missing")
	}
	return nil
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Governor.CooldownSec) * time.Second
}

func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.TimeoutSec) * time.Second
}
