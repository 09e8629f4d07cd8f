package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL        string `mapstructure:"base_url" envconfig:"BASE_URL" default:"http://127.0.0.1:8000/api/v1"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" envconfig:"TIMEOUT_SECONDS" default:"15"`
}

type RefreshConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds" envconfig:"INTERVAL_SECONDS" default:"30"`
	WindowHours     int `mapstructure:"window_hours" envconfig:"WINDOW_HOURS" default:"720"`
}

type StreamConfig struct {
	Enabled bool   `mapstructure:"enabled" envconfig:"ENABLED" default:"true"`
	URL     string `mapstructure:"url" envconfig:"URL"`
}

type Config struct {
	API     APIConfig     `mapstructure:"api" envconfig:"API"`
	Refresh RefreshConfig `mapstructure:"refresh" envconfig:"REFRESH"`
	Stream  StreamConfig  `mapstructure:"stream" envconfig:"STREAM"`
	Metrics struct {
		Enabled   bool   `mapstructure:"enabled" envconfig:"ENABLED" default:"false"`
		Namespace string `mapstructure:"namespace" envconfig:"NAMESPACE" default:"frontdesk"`
	} `mapstructure:"metrics" envconfig:"METRICS"`
	StateDir string `mapstructure:"state_dir" envconfig:"STATE_DIR" default:".frontdesk"`
}

func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *RefreshConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// LoadConfig reads config.yaml via viper; when no config file exists the
// environment alone configures the client (prefix FRONTDESK).
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var config Config
		if err := envconfig.Process("frontdesk", &config); err != nil {
			return nil, fmt.Errorf("failed to load config from environment: %w", err)
		}
		return &config, nil
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://127.0.0.1:8000/api/v1"
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 15
	}
	if c.Refresh.IntervalSeconds == 0 {
		c.Refresh.IntervalSeconds = 30
	}
	if c.Refresh.WindowHours == 0 {
		c.Refresh.WindowHours = 720
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "frontdesk"
	}
	if c.StateDir == "" {
		c.StateDir = ".frontdesk"
	}
}
