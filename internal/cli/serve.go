package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/internal/server"
	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/session"
)

// Environment variables read by serve. They override the config file and
// are overridden by flags.
const (
	envAddr          = "FORCEGRAPH_ADDR"
	envRedisAddr     = "FORCEGRAPH_REDIS_ADDR"
	envRedisPassword = "FORCEGRAPH_REDIS_PASSWORD"
)

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		redisAddr  string
		sessionTTL time.Duration
		noCache    bool
		noMetrics  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and live sessions over HTTP",
		Long: `Start an HTTP server for batch layouts and live layout sessions.

Batch endpoints settle a posted graph and return the layout or a rendered
artifact. Session endpoints keep a simulation running between requests so a
client can tick it, drag and hover nodes and fetch each frame.

Settings come from the config file, then from the environment (a .env file
in the working directory is read first), then from flags:

  FORCEGRAPH_ADDR            listen address
  FORCEGRAPH_REDIS_ADDR      share the layout cache through Redis
  FORCEGRAPH_REDIS_PASSWORD`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				c.Logger.Debug("no .env file loaded", "error", err)
			}
			c.applyServerEnv()

			set := cmd.Flags().Changed
			if set("addr") {
				c.Config.Server.Addr = addr
			}
			if set("redis") {
				c.Config.Server.Redis.Addr = redisAddr
			}
			if set("session-ttl") {
				c.Config.Server.SessionTTL = sessionTTL
			}
			if err := c.Config.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), noCache, !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for a shared layout cache")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", session.DefaultTTL, "idle time before a session expires")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

// applyServerEnv copies server settings from the environment over the
// config file.
func (c *CLI) applyServerEnv() {
	if v, ok := os.LookupEnv(envAddr); ok && v != "" {
		c.Config.Server.Addr = v
	}
	if v, ok := os.LookupEnv(envRedisAddr); ok && v != "" {
		c.Config.Server.Redis.Addr = v
	}
	if v, ok := os.LookupEnv(envRedisPassword); ok {
		c.Config.Server.Redis.Password = v
	}
}

func (c *CLI) runServe(ctx context.Context, noCache, withMetrics bool) error {
	store, err := c.serverCache(ctx, noCache)
	if err != nil {
		return err
	}

	var metrics *server.Metrics
	if withMetrics {
		metrics = server.NewMetrics(appName)
		metrics.Register()
	}

	runner := pipeline.NewRunner(store, serverKeyer(store), c.Logger)
	defer runner.Close()

	srv := server.New(server.Options{
		Runner:   runner,
		Sessions: session.NewManager(c.Config.Server.SessionTTL),
		Defaults: c.Config.Options(),
		Metrics:  metrics,
		Logger:   c.Logger,
	})

	printInfo("Serving on %s", c.Config.Server.Addr)
	if withMetrics {
		printDetail("Metrics: %s/metrics", c.Config.Server.Addr)
	}
	return srv.Run(ctx, c.Config.Server.Addr)
}

// serverCache picks Redis when an address is configured, otherwise the
// local cache used by the other commands.
func (c *CLI) serverCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	redisCfg := c.Config.Server.Redis
	if noCache || c.Config.Cache.Disabled || redisCfg.Addr == "" {
		return c.newCache(noCache)
	}
	rc, err := cache.NewRedisCache(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", redisCfg.Addr, err)
	}
	c.Logger.Info("using redis cache", "addr", redisCfg.Addr, "db", redisCfg.DB)
	return rc, nil
}

// serverKeyer prefixes keys in a shared Redis database so layouts stay apart
// from other users of it. Local caches keep the default keys, which lets the
// CLI and the server share a cache directory.
func serverKeyer(store cache.Cache) cache.Keyer {
	if _, ok := store.(*cache.RedisCache); ok {
		return cache.NewScopedKeyer(nil, appName+":")
	}
	return nil
}
