package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all salespro configuration.
type Config struct {
	Environment string `yaml:"environment"`

	Server  ServerConfig  `yaml:"server"`
	Layout  LayoutConfig  `yaml:"layout"`
	Metrics MetricsConfig `yaml:"metrics"`
	LLM     LLMConfig     `yaml:"llm"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	MaxUploadMB  int64         `yaml:"max_upload_mb"`
	UploadTTL    time.Duration `yaml:"upload_ttl"`
}

// LayoutConfig describes how the merged-header workbook is laid out.
type LayoutConfig struct {
	BranchMarker      string   `yaml:"branch_marker"`
	Channels          []string `yaml:"channels"`
	TotalLabel        string   `yaml:"total_label"`
	PlanKeywords      []string `yaml:"plan_keywords"`
	StockKeywords     []string `yaml:"stock_keywords"`
	FirstValueCol     int      `yaml:"first_value_col"`
	FirstDataRow      int      `yaml:"first_data_row"`
	UnknownBranch     string   `yaml:"unknown_branch"`
	SkipUnknownBranch bool     `yaml:"skip_unknown_branch"`
}

// MetricsConfig holds forecast and inventory thresholds.
type MetricsConfig struct {
	DefaultPlan      float64 `yaml:"default_plan"`
	DefaultMonthDays int     `yaml:"default_month_days"`
	Unit             string  `yaml:"unit"`

	ShortageDays  float64 `yaml:"shortage_days"`
	OverstockDays float64 `yaml:"overstock_days"`
	MinTurnover   float64 `yaml:"min_turnover"`

	DangerPercent    float64 `yaml:"danger_percent"`
	ExcellentPercent float64 `yaml:"excellent_percent"`
}

// LLMConfig configures the recommendation provider.
type LLMConfig struct {
	Provider     string        `yaml:"provider"` // groq, openai, gemini, mock
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	Temperature  float64       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetryTime time.Duration `yaml:"max_retry_time"`
	Concurrency  int           `yaml:"concurrency"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

const (
	GroqURL   = "https://api.groq.com/openai/v1/chat/completions"
	OpenAIURL = "https://api.openai.com/v1/chat/completions"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Environment: "local",
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  120 * time.Second,
			MaxUploadMB:  20,
			UploadTTL:    30 * time.Minute,
		},
		Layout: LayoutConfig{
			BranchMarker:  "Филиал",
			Channels:      []string{"город", "область", "хорека"},
			TotalLabel:    "итого",
			PlanKeywords:  []string{"план", "plan"},
			StockKeywords: []string{"остат", "склад", "stock", "inventory"},
			FirstValueCol: 2,
			FirstDataRow:  2,
			UnknownBranch: "Unknown",
		},
		Metrics: MetricsConfig{
			DefaultPlan:      200000,
			DefaultMonthDays: 30,
			Unit:             "кг",
			ShortageDays:     7,
			OverstockDays:    45,
			MinTurnover:      0.5,
			DangerPercent:    90,
			ExcellentPercent: 105,
		},
		LLM: LLMConfig{
			Provider:     "groq",
			BaseURL:      GroqURL,
			Model:        "llama3-70b-8192",
			Temperature:  0.2,
			Timeout:      25 * time.Second,
			MaxRetryTime: 45 * time.Second,
			Concurrency:  3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads .env (if present), then the YAML file at path, then applies env overrides.
// A missing YAML file yields the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // loads .env

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path resolves the config file location from SALESPRO_CONFIG.
func Path() string {
	return envOr("SALESPRO_CONFIG", "salespro.yaml")
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	// provider-specific keys pick the provider, generic ones only fill in
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.Provider = "gemini"
		c.LLM.APIKey = v
		if c.LLM.Model == "" || strings.HasPrefix(c.LLM.Model, "llama") {
			c.LLM.Model = "gemini-2.0-flash"
		}
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.LLM.Provider = "groq"
		c.LLM.APIKey = v
		c.LLM.BaseURL = GroqURL
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_GATEWAY_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.LLM.Concurrency = n
		}
	}
	if os.Getenv("USE_MOCK_LLM") == "true" {
		c.LLM.Provider = "mock"
	}
	if c.LLM.Provider == "openai" && c.LLM.BaseURL == GroqURL {
		c.LLM.BaseURL = OpenAIURL
	}
}

// Validate rejects configurations the parsers cannot work with.
func (c *Config) Validate() error {
	if c.Layout.BranchMarker == "" {
		return fmt.Errorf("layout.branch_marker must not be empty")
	}
	if len(c.Layout.Channels) == 0 {
		return fmt.Errorf("layout.channels must list at least one channel")
	}
	if c.Layout.FirstValueCol < 1 {
		return fmt.Errorf("layout.first_value_col must be >= 1, got %d", c.Layout.FirstValueCol)
	}
	if c.Layout.FirstDataRow < 2 {
		return fmt.Errorf("layout.first_data_row must be >= 2, got %d", c.Layout.FirstDataRow)
	}
	if c.Metrics.DefaultMonthDays <= 0 {
		return fmt.Errorf("metrics.default_month_days must be positive")
	}
	if c.Metrics.ShortageDays >= c.Metrics.OverstockDays {
		return fmt.Errorf("metrics.shortage_days (%v) must be below overstock_days (%v)",
			c.Metrics.ShortageDays, c.Metrics.OverstockDays)
	}
	switch c.LLM.Provider {
	case "groq", "openai", "gemini", "mock":
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
