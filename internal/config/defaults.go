package config

import "time"

// builtin returns the gateway's built-in configuration, used for any field
// a loaded overseer.yaml leaves unset.
func builtin() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:             ":8080",
			PortalURL:        "",
			AllowedWSOrigins: nil,
		},
		RateLimits: RateLimitsConfig{
			PerMinute: 60,
		},
		Budgets: BudgetsConfig{
			MaxPerRequest: 50_000,
			Daily:         1_000_000,
		},
		EventBus: EventBusConfig{
			CatchupLimit: 50,
			WriteTimeout: 5 * time.Second,
		},
		DefaultProfile: "enterprise",
	}
}
