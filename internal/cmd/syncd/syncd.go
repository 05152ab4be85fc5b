// Package syncd parses syncd command flags and launches the sync runtime.
package syncd

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/cadieux/rostersync/internal/platform/cmd"
	"github.com/cadieux/rostersync/internal/platform/timeouts"
	rosterapp "github.com/cadieux/rostersync/internal/services/roster/app"
)

// Config holds syncd command configuration.
type Config struct {
	Port          int           `env:"ROSTERSYNC_SYNCD_PORT" envDefault:"8091"`
	DBPath        string        `env:"ROSTERSYNC_SYNCD_DB_PATH" envDefault:"data/roster.db"`
	RegistryURL   string        `env:"ROSTERSYNC_REGISTRY_URL"`
	RegistryToken string        `env:"ROSTERSYNC_REGISTRY_TOKEN"`
	Schedule      string        `env:"ROSTERSYNC_SYNCD_SCHEDULE" envDefault:"@every 1h"`
	RetryDelay    time.Duration `env:"ROSTERSYNC_SYNCD_RETRY_DELAY" envDefault:"5m"`
	FetchTimeout  time.Duration `env:"ROSTERSYNC_SYNCD_FETCH_TIMEOUT" envDefault:"30s"`
	Once          string        `env:"ROSTERSYNC_SYNCD_ONCE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The syncd health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The roster SQLite database path")
	fs.StringVar(&cfg.RegistryURL, "registry-url", cfg.RegistryURL, "The remote member registry base URL")
	fs.StringVar(&cfg.RegistryToken, "registry-token", cfg.RegistryToken, "The remote member registry bearer token")
	fs.StringVar(&cfg.Schedule, "schedule", cfg.Schedule, "Cron schedule for full roster syncs")
	fs.DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "Delay before retrying a failed sync run")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "Remote registry request timeout")
	fs.StringVar(&cfg.Once, "once", cfg.Once, "Sync a single event code and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the sync runtime.
func Run(ctx context.Context, cfg Config) error {
	options := entrypoint.RunOptions{ShutdownTimeout: timeouts.Shutdown}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceSyncd, options, func(context.Context) error {
		return rosterapp.Run(ctx, rosterapp.RuntimeConfig{
			Port:          cfg.Port,
			DBPath:        cfg.DBPath,
			RegistryURL:   cfg.RegistryURL,
			RegistryToken: cfg.RegistryToken,
			Schedule:      cfg.Schedule,
			RetryDelay:    cfg.RetryDelay,
			FetchTimeout:  cfg.FetchTimeout,
			Once:          cfg.Once,
		})
	})
}
