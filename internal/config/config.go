// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Market describes the tick source the live loop polls.
type Market struct {
	Provider       string `yaml:"provider"` // stub | rest | websocket
	Symbol         string `yaml:"symbol"`
	Lookback       int    `yaml:"lookback"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
	BaseURL        string `yaml:"base_url"`
	WebsocketURL   string `yaml:"websocket_url"`
}

// Strategy specifies which strategy variant is active along with its tunables.
type Strategy struct {
	Mode            string  `yaml:"mode"` // short_rl | momentum
	WindowSize      int     `yaml:"window_size"`
	CandlePeriodSec int64   `yaml:"candle_period_secs"`
	InitialBalance  float64 `yaml:"initial_balance"`
	// VelocityThreshold tunes the momentum mode, in scaled feature units.
	// Zero means the policy default.
	VelocityThreshold float64 `yaml:"velocity_threshold"`
}

// Artifacts points at the serialized model and scaler produced by offline training.
type Artifacts struct {
	ModelPath  string `yaml:"model_path"`
	ScalerPath string `yaml:"scaler_path"`
}

// Notify configures the best-effort email channel. Credentials come from the
// environment, not from this file.
type Notify struct {
	Enabled  bool   `yaml:"enabled"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// Session bounds the trading day; the watchdog terminates the process at close.
type Session struct {
	Timezone  string `yaml:"timezone"`
	OpenTime  string `yaml:"open_time"`  // HH:MM local to Timezone
	CloseTime string `yaml:"close_time"` // HH:MM local to Timezone
}

// Journal configures where decision records are appended.
type Journal struct {
	Path string `yaml:"path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App       App       `yaml:"app"`
	Market    Market    `yaml:"market"`
	Strategy  Strategy  `yaml:"strategy"`
	Artifacts Artifacts `yaml:"artifacts"`
	Notify    Notify    `yaml:"notify"`
	Session   Session   `yaml:"session"`
	Journal   Journal   `yaml:"journal"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Market.Lookback <= 0 {
		c.Market.Lookback = 15
	}
	if c.Market.PollIntervalMs <= 0 {
		c.Market.PollIntervalMs = 5000
	}
	if c.Strategy.WindowSize <= 0 {
		c.Strategy.WindowSize = 15
	}
	if c.Strategy.CandlePeriodSec <= 0 {
		c.Strategy.CandlePeriodSec = 60
	}
	if c.Strategy.InitialBalance <= 0 {
		c.Strategy.InitialBalance = 25000
	}
	if c.Session.Timezone == "" {
		c.Session.Timezone = "America/New_York"
	}
	if c.Session.OpenTime == "" {
		c.Session.OpenTime = "09:30"
	}
	if c.Session.CloseTime == "" {
		c.Session.CloseTime = "16:00"
	}
}
