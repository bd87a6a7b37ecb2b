package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/service/cache"
	"github.com/urfave/cli/v3"
)

type Cache struct {
	addr      string
	password  string
	db        int
	keyPrefix string
}

func (x *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (host:port) holding dashboard and heatmap views",
			Category:    "Cache",
			Destination: &x.addr,
			Sources:     cli.EnvVars("RISKFLOW_REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Cache",
			Destination: &x.password,
			Sources:     cli.EnvVars("RISKFLOW_REDIS_PASSWORD"),
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Cache",
			Destination: &x.db,
			Sources:     cli.EnvVars("RISKFLOW_REDIS_DB"),
		},
		&cli.StringFlag{
			Name:        "redis-key-prefix",
			Usage:       "Prefix added to every cache key",
			Category:    "Cache",
			Destination: &x.keyPrefix,
			Sources:     cli.EnvVars("RISKFLOW_REDIS_KEY_PREFIX"),
		},
	}
}

func (x Cache) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", x.addr),
		slog.Int("password.len", len(x.password)),
		slog.Int("db", x.db),
	)
}

// IsEnabled returns true if a Redis address is configured
func (x *Cache) IsEnabled() bool {
	return x.addr != ""
}

// Configure connects to Redis. It returns nil when no address is set.
func (x *Cache) Configure(ctx context.Context) (*cache.Redis, error) {
	if !x.IsEnabled() {
		return nil, nil
	}

	var opts []cache.Option
	if x.keyPrefix != "" {
		opts = append(opts, cache.WithKeyPrefix(x.keyPrefix))
	}
	client := cache.New(x.addr, x.password, x.db, opts...)
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect redis", goerr.V("addr", x.addr))
	}
	return client, nil
}
