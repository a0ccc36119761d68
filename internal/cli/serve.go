package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panotour/internal/server"
	"github.com/matzehuels/panotour/pkg/cache"
	"github.com/matzehuels/panotour/pkg/history"
	"github.com/matzehuels/panotour/pkg/metrics"
	"github.com/matzehuels/panotour/pkg/observability"
	"github.com/matzehuels/panotour/pkg/pipeline"
)

// redisKeyPrefix scopes report keys in a shared Redis.
const redisKeyPrefix = "panotour:"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var cfg ServerConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve the analysis API over HTTP.

Reports are cached in Redis when --redis-addr is set, otherwise in the local
cache directory. Analyses are kept in MongoDB when --mongo-uri is set,
otherwise in memory. Prometheus metrics are exposed at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("addr") {
				cfg.Addr = c.Config.Server.Addr
			}
			if !flags.Changed("redis-addr") {
				cfg.RedisAddr = c.Config.Server.RedisAddr
			}
			if !flags.Changed("mongo-uri") {
				cfg.MongoURI = c.Config.Server.MongoURI
			}
			if !flags.Changed("mongo-database") {
				cfg.MongoDatabase = c.Config.Server.MongoDatabase
			}
			if err := validate.Struct(cfg); err != nil {
				return fmt.Errorf("invalid server options: %w", err)
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address for the shared report cache")
	cmd.Flags().StringVar(&cfg.MongoURI, "mongo-uri", "", "MongoDB URI for analysis history")
	cmd.Flags().StringVar(&cfg.MongoDatabase, "mongo-database", history.DefaultDatabase, "MongoDB database name")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg ServerConfig) error {
	runner, err := c.newServerRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			c.Logger.Warn("close history store", "error", err)
		}
	}()

	reg := metrics.NewRegistry()
	observability.Register(reg)
	defer observability.Reset()

	srv := server.New(server.Options{
		Runner:  runner,
		Store:   store,
		Metrics: reg.Handler(),
		Logger:  c.Logger,
	})
	return srv.ListenAndServe(ctx, cfg.Addr)
}

func (c *CLI) newServerRunner(ctx context.Context, cfg ServerConfig) (*pipeline.Runner, error) {
	if cfg.RedisAddr == "" {
		if !c.Config.Cache.Enabled {
			return c.newRunner(true)
		}
		// Reports live as long as the process without a shared backend.
		return pipeline.NewRunner(cache.NewMemoryCache(), nil, c.Logger), nil
	}
	rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	c.Logger.Info("using redis cache", "addr", cfg.RedisAddr)
	return pipeline.NewRunner(rc, cache.NewScopedKeyer(nil, redisKeyPrefix), c.Logger), nil
}

func newStore(ctx context.Context, cfg ServerConfig) (history.Store, error) {
	if cfg.MongoURI == "" {
		return history.NewMemoryStore(), nil
	}
	s, err := history.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("using mongodb history", "database", cfg.MongoDatabase)
	return s, nil
}
