// Command overseer runs the gateway: an HTTP/WebSocket API supervising the
// thirteen deterministic Eyes over a session's pipeline state.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eyeward-labs/overseer/internal/api"
	"github.com/eyeward-labs/overseer/internal/config"
	"github.com/eyeward-labs/overseer/internal/eventbus"
	"github.com/eyeward-labs/overseer/internal/pipeline"
	"github.com/eyeward-labs/overseer/internal/policy"
	"github.com/eyeward-labs/overseer/internal/settings"
	"github.com/eyeward-labs/overseer/internal/store"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(ctx, *configDir)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("configuration loaded", "addr", cfg.Server.Addr, "default_profile", cfg.DefaultProfile)

	dbConfig, err := store.LoadConfigFromEnv()
	if err != nil {
		slog.Error("failed to load database config", "error", err)
		os.Exit(1)
	}

	storeClient, err := store.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storeClient.Close(); err != nil {
			slog.Error("error closing database client", "error", err)
		}
	}()
	slog.Info("connected to postgres", "database", dbConfig.Database)

	counter := newCounter(ctx, cfg.Redis)

	enforcer := policy.NewEnforcer(storeClient.APIKeys, storeClient.Audit, counter)
	enforcer.Limits.RatePerMinute = cfg.RateLimits.PerMinute
	enforcer.Limits.BudgetMaxPerRequest = cfg.Budgets.MaxPerRequest
	enforcer.Limits.BudgetDaily = cfg.Budgets.Daily

	engine := pipeline.NewEngine(storeClient.Sessions)
	settingsSvc := settings.NewService(storeClient.Profiles, storeClient.Sessions)
	events := eventbus.NewManager(storeClient.Events, settingsSvc, cfg.EventBus.WriteTimeout, cfg.EventBus.CatchupLimit)

	server := api.NewServer(storeClient, enforcer, engine, settingsSvc, events, cfg.DefaultProfile, cfg.Server.PortalURL)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.Server.Addr)
		if err := server.Start(cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

// newCounter prefers a shared Redis-backed rate/budget counter so multiple
// gateway replicas share the same limits; falls back to an in-process
// counter when no Redis address is configured (spec.md §5).
func newCounter(ctx context.Context, cfg config.RedisConfig) policy.Counter {
	if cfg.Addr == "" {
		slog.Info("no redis address configured, using in-process rate counter")
		return policy.NewMemoryCounter()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to reach redis, falling back to in-process rate counter", "error", err)
		return policy.NewMemoryCounter()
	}
	slog.Info("connected to redis", "addr", cfg.Addr)
	return policy.NewRedisCounter(ctx, client)
}
