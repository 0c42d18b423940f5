// Package config loads the decision core's configuration from an optional
// JSON file with environment variable overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	LoggingConfig     LoggingConfig     `json:"logging"`
	CalibrationConfig CalibrationConfig `json:"calibration"`
	BanditConfig      BanditConfig      `json:"bandit"`
	MaintenanceConfig MaintenanceConfig `json:"maintenance"`
	StoreConfig       StoreConfig       `json:"store"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level      string `json:"level"`       // DEBUG, INFO, WARN, ERROR
	Output     string `json:"output"`      // stdout, stderr, or file path
	JSONFormat bool   `json:"json_format"`
}

// CalibrationConfig bounds the rolling calibration windows.
type CalibrationConfig struct {
	MinDataPoints int    `json:"min_data_points"`
	WindowSize    int    `json:"window_size"`
	MaxAgeHours   int    `json:"max_age_hours"`
	Method        string `json:"method"` // "platt" or "isotonic"
}

// BanditConfig tunes the arbitration policy.
type BanditConfig struct {
	Epsilon0              float64 `json:"epsilon0"`
	MinExploration        float64 `json:"min_exploration"`
	DecayRate             float64 `json:"decay_rate"`
	UpdateIntervalMinutes int     `json:"update_interval_minutes"`
	ReturnWeight          float64 `json:"return_weight"`
	AccuracyBaseline      float64 `json:"accuracy_baseline"`
}

// MaintenanceConfig sets the recurring job cadences.
type MaintenanceConfig struct {
	RetrainIntervalHours   int `json:"retrain_interval_hours"`   // full retrain + weights
	WeightsIntervalMinutes int `json:"weights_interval_minutes"` // weights only
	SaveIntervalMinutes    int `json:"save_interval_minutes"`    // persistence snapshot
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend  string         `json:"backend"` // memory, file, redis, postgres
	Dir      string         `json:"dir"`     // file backend
	Redis    RedisConfig    `json:"redis"`
	Postgres PostgresConfig `json:"postgres"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	TTLHours int    `json:"ttl_hours"`
}

// PostgresConfig holds database connection settings.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		LoggingConfig: LoggingConfig{
			Level:      "INFO",
			Output:     "stdout",
			JSONFormat: true,
		},
		CalibrationConfig: CalibrationConfig{
			MinDataPoints: 20,
			WindowSize:    500,
			MaxAgeHours:   30 * 24,
			Method:        "isotonic",
		},
		BanditConfig: BanditConfig{
			Epsilon0:              0.3,
			MinExploration:        0.05,
			DecayRate:             0.95,
			UpdateIntervalMinutes: 60,
			ReturnWeight:          0.1,
			AccuracyBaseline:      0.5,
		},
		MaintenanceConfig: MaintenanceConfig{
			RetrainIntervalHours:   24,
			WeightsIntervalMinutes: 60,
			SaveIntervalMinutes:    15,
		},
		StoreConfig: StoreConfig{
			Backend: "file",
			Dir:     "data",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "core",
				Database: "decision_core",
				SSLMode:  "disable",
			},
		},
	}
}

// Load reads the config file (if path is non-empty and exists), then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LoggingConfig.Level = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.StoreConfig.Backend = v
	}
	if v := os.Getenv("STORE_DIR"); v != "" {
		cfg.StoreConfig.Dir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.StoreConfig.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.StoreConfig.Redis.Password = v
	}
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.StoreConfig.Postgres.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.StoreConfig.Postgres.Port = port
		}
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.StoreConfig.Postgres.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.StoreConfig.Postgres.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.StoreConfig.Postgres.Database = v
	}
	if v := os.Getenv("CALIBRATION_METHOD"); v != "" {
		cfg.CalibrationConfig.Method = v
	}
}

// Validate checks values that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	switch c.StoreConfig.Backend {
	case "memory", "file", "redis", "postgres":
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreConfig.Backend)
	}
	switch c.CalibrationConfig.Method {
	case "platt", "isotonic":
	default:
		return fmt.Errorf("unknown calibration method %q", c.CalibrationConfig.Method)
	}
	if c.CalibrationConfig.MinDataPoints < 4 {
		return fmt.Errorf("calibration min_data_points must be at least 4, got %d", c.CalibrationConfig.MinDataPoints)
	}
	if c.BanditConfig.MinExploration < 0 || c.BanditConfig.MinExploration > 1 {
		return fmt.Errorf("bandit min_exploration must be in [0,1], got %.2f", c.BanditConfig.MinExploration)
	}
	if c.BanditConfig.DecayRate <= 0 || c.BanditConfig.DecayRate > 1 {
		return fmt.Errorf("bandit decay_rate must be in (0,1], got %.2f", c.BanditConfig.DecayRate)
	}
	return nil
}

// MaxAge returns the calibration window age bound as a duration.
func (c *CalibrationConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// UpdateInterval returns the bandit decay time base as a duration.
func (c *BanditConfig) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMinutes) * time.Minute
}
