// Package config loads the gateway's own YAML configuration (server
// address, policy defaults, event bus tuning), grounded on the teacher's
// pkg/config loader idiom: YAML + environment-variable expansion, built-in
// defaults merged with user overrides, then validated.
package config

import "time"

// Config is the gateway-wide configuration object returned by Load.
type Config struct {
	configDir string

	Server   ServerConfig
	RateLimits RateLimitsConfig
	Budgets  BudgetsConfig
	EventBus EventBusConfig
	Redis    RedisConfig

	// DefaultProfile is the profile name a session gets when it names none.
	DefaultProfile string
}

// ServerConfig groups HTTP/WS surface settings.
type ServerConfig struct {
	Addr             string   `yaml:"addr"`
	PortalURL        string   `yaml:"portal_url"`
	AllowedWSOrigins []string `yaml:"allowed_ws_origins"`
}

// RateLimitsConfig is the gateway-wide default rate limit applied when an
// api key's own Limits leave RatePerMinute unset (spec.md §4.3).
type RateLimitsConfig struct {
	PerMinute int `yaml:"per_minute"`
}

// BudgetsConfig is the gateway-wide default token budget applied when an
// api key's own Limits leave a budget field unset (spec.md §4.3).
type BudgetsConfig struct {
	MaxPerRequest int `yaml:"max_per_request"`
	Daily         int `yaml:"daily"`
}

// EventBusConfig tunes the WebSocket fan-out (spec.md §4.6).
type EventBusConfig struct {
	CatchupLimit int           `yaml:"catchup_limit"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RedisConfig points at a shared rate/budget counter backend. Addr == ""
// means use the in-process MemoryCounter instead (spec.md §5: "shared-cache
// if available, in-process map with expiry otherwise").
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// ConfigDir returns the directory Load read from.
func (c *Config) ConfigDir() string { return c.configDir }
