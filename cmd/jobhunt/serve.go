package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/config"
	"github.com/jobhunt-app/jobhunt/internal/resource"
	"github.com/jobhunt-app/jobhunt/internal/store"
	"github.com/jobhunt-app/jobhunt/internal/web"
	"github.com/jobhunt-app/jobhunt/internal/web/ratelimit"
)

var (
	servePort int
	serveHost string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Long:  "Run database migrations and start the JSON:API server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if serveHost != "" {
			cfg.Server.Host = serveHost
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		registry := resource.Catalog()
		st, err := store.Open(cfg.Database.URL, registry, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		server := web.NewServer(registry, st, logger, cfg.Auth.Required)
		if cfg.RateLimit.Enabled {
			limiter, err := newLimiter(cfg.RateLimit)
			if err != nil {
				return err
			}
			server.WithRateLimit(limiter)
		}
		return server.ListenAndServe(ctx, cfg.Server.Addr())
	},
}

// newLimiter builds the configured limiter: Redis-backed when a URL is set,
// in-process otherwise.
func newLimiter(cfg config.RateLimitConfig) (ratelimit.Limiter, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit redis url: %w", err)
		}
		return ratelimit.NewRedisLimiter(redis.NewClient(opts), cfg.Requests, cfg.Window)
	}
	return ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{
		Requests:        cfg.Requests,
		Window:          cfg.Window,
		CleanupInterval: 5 * cfg.Window,
	}), nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	var zcfg zap.Config
	if cfg.Logging.JSON {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}
