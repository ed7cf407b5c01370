package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// overseerYAML mirrors the on-disk overseer.yaml shape. Every field is a
// pointer or zero-valued so mergo only overrides what the user actually set.
type overseerYAML struct {
	Server         *ServerConfig     `yaml:"server"`
	RateLimits     *RateLimitsConfig `yaml:"rate_limits"`
	Budgets        *BudgetsConfig    `yaml:"budgets"`
	EventBus       *EventBusConfig   `yaml:"event_bus"`
	Redis          *RedisConfig      `yaml:"redis"`
	DefaultProfile string            `yaml:"default_profile"`
}

// Load reads overseer.yaml and an adjacent .env file from configDir,
// merges the result over the built-in defaults, and validates it.
//
// Steps: (1) load .env if present, (2) load overseer.yaml if present,
// expanding ${VAR} references, (3) merge user values over built-ins,
// (4) validate.
func Load(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)

	envPath := filepath.Join(configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Debug("no .env file loaded", "path", envPath, "error", err)
	}

	cfg := builtin()
	cfg.configDir = configDir

	user, err := loadYAML(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load overseer.yaml: %w", err)
	}
	if user != nil {
		if err := mergeUser(cfg, user); err != nil {
			return nil, fmt.Errorf("failed to merge configuration: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	log.Info("configuration loaded", "addr", cfg.Server.Addr, "default_profile", cfg.DefaultProfile)
	return cfg, nil
}

func loadYAML(configDir string) (*overseerYAML, error) {
	path := filepath.Join(configDir, "overseer.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	data = ExpandEnv(data)

	var parsed overseerYAML
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &parsed, nil
}

func mergeUser(cfg *Config, user *overseerYAML) error {
	if user.Server != nil {
		if err := mergo.Merge(&cfg.Server, user.Server, mergo.WithOverride); err != nil {
			return err
		}
	}
	if user.RateLimits != nil {
		if err := mergo.Merge(&cfg.RateLimits, user.RateLimits, mergo.WithOverride); err != nil {
			return err
		}
	}
	if user.Budgets != nil {
		if err := mergo.Merge(&cfg.Budgets, user.Budgets, mergo.WithOverride); err != nil {
			return err
		}
	}
	if user.EventBus != nil {
		if err := mergo.Merge(&cfg.EventBus, user.EventBus, mergo.WithOverride); err != nil {
			return err
		}
	}
	if user.Redis != nil {
		cfg.Redis = *user.Redis
	}
	if user.DefaultProfile != "" {
		cfg.DefaultProfile = user.DefaultProfile
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.RateLimits.PerMinute <= 0 {
		return fmt.Errorf("rate_limits.per_minute must be positive")
	}
	if cfg.Budgets.MaxPerRequest <= 0 {
		return fmt.Errorf("budgets.max_per_request must be positive")
	}
	if cfg.Budgets.Daily < cfg.Budgets.MaxPerRequest {
		return fmt.Errorf("budgets.daily must be >= budgets.max_per_request")
	}
	if cfg.EventBus.CatchupLimit <= 0 {
		return fmt.Errorf("event_bus.catchup_limit must be positive")
	}
	if cfg.EventBus.WriteTimeout <= 0 {
		return fmt.Errorf("event_bus.write_timeout must be positive")
	}
	if cfg.DefaultProfile == "" {
		return fmt.Errorf("default_profile must not be empty")
	}
	return nil
}
