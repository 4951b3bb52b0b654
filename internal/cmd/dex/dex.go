// Package dex parses dex bot flags and launches the service.
package dex

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/rowedex/internal/platform/cmd"
	"github.com/louisbranch/rowedex/internal/platform/logging"
	server "github.com/louisbranch/rowedex/internal/services/dex/app"
)

// Config holds dex command configuration.
type Config struct {
	Port         int    `env:"ROWEDEX_DEX_PORT" envDefault:"8095"`
	DBPath       string `env:"ROWEDEX_DB_PATH" envDefault:"data/rowedex.db"`
	DiscordToken string `env:"ROWEDEX_DISCORD_TOKEN"`
	GuildID      string `env:"ROWEDEX_DISCORD_GUILD_ID"`
	MetricsAddr  string `env:"ROWEDEX_METRICS_ADDR"`
	LogLevel     string `env:"ROWEDEX_LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The gRPC health server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the dex SQLite database")
	fs.StringVar(&cfg.GuildID, "guild", cfg.GuildID, "Register /dex in this guild only")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the dex bot.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(entrypoint.ServiceDex, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	return entrypoint.Run(ctx, entrypoint.ServiceDex, entrypoint.Options{Logger: logger}, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			Port:         cfg.Port,
			DBPath:       cfg.DBPath,
			DiscordToken: cfg.DiscordToken,
			GuildID:      cfg.GuildID,
			MetricsAddr:  cfg.MetricsAddr,
		}, logger)
	})
}
