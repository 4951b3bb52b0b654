// Package server wires the dex runtime and the bot process lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/louisbranch/rowedex/internal/platform/config"
	platformgrpc "github.com/louisbranch/rowedex/internal/platform/grpc"
	"github.com/louisbranch/rowedex/internal/platform/telemetry/metrics"
	"github.com/louisbranch/rowedex/internal/platform/timeouts"
	"github.com/louisbranch/rowedex/internal/services/dex/lookup"
	"github.com/louisbranch/rowedex/internal/services/dex/resolve"
	"github.com/louisbranch/rowedex/internal/services/dex/router"
	"github.com/louisbranch/rowedex/internal/services/dex/search"
	dexsqlite "github.com/louisbranch/rowedex/internal/services/dex/storage/sqlite"
	"github.com/louisbranch/rowedex/internal/services/dex/taxonomy"
	"github.com/louisbranch/rowedex/internal/services/dex/transport/discord"
	"github.com/louisbranch/rowedex/internal/services/dex/views"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HealthService is the grpc.health.v1 service name the bot reports under.
const HealthService = "rowedex.dex"

// Config holds everything the bot needs at startup.
type Config struct {
	Port         int
	DBPath       string
	DiscordToken string
	GuildID      string
	MetricsAddr  string
}

// Validate reports the first missing setting.
func (c Config) Validate() error {
	if err := config.Required("DB_PATH", c.DBPath); err != nil {
		return err
	}
	if err := config.Required("DISCORD_TOKEN", c.DiscordToken); err != nil {
		return err
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// Runtime is the assembled dex object graph. It owns the store.
type Runtime struct {
	Store    *dexsqlite.Store
	Taxonomy *taxonomy.Taxonomy
	Resolver *resolve.Resolver
	Lookup   *lookup.Service
	Search   *search.Searcher
	Router   *router.Router
	Handler  *discord.Handler
	Metrics  *metrics.Metrics
}

// Build loads the type taxonomy, opens the store, and checks that every
// registered view has a handler. Any failure here is a startup error.
func Build(dbPath string, logger *zap.Logger, m *metrics.Metrics) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	tax, err := taxonomy.Load()
	if err != nil {
		return nil, fmt.Errorf("load type taxonomy: %w", err)
	}
	store, err := dexsqlite.Open(dbPath, dexsqlite.WithQueryObserver(m.ObserveStoreQuery))
	if err != nil {
		return nil, fmt.Errorf("open dex store: %w", err)
	}
	r, err := router.New(views.Handlers(store, tax), logger, m)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build router: %w", err)
	}

	resolver := resolve.New(store, m)
	lookupService := lookup.New(resolver, store, tax, logger)
	searcher := search.New(store, logger)
	return &Runtime{
		Store:    store,
		Taxonomy: tax,
		Resolver: resolver,
		Lookup:   lookupService,
		Search:   searcher,
		Router:   r,
		Handler:  discord.NewHandler(lookupService, searcher, r, logger, m),
		Metrics:  m,
	}, nil
}

// Close releases the store.
func (rt *Runtime) Close() error {
	if rt == nil || rt.Store == nil {
		return nil
	}
	return rt.Store.Close()
}

// Run builds the runtime and serves the Discord gateway, the gRPC health
// endpoint, and the optional metrics endpoint until ctx ends or one of them
// fails.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rt, err := Build(cfg.DBPath, logger, metrics.New())
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("close dex store", zap.Error(err))
		}
	}()

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	bot := discord.NewBot(session, rt.Handler, cfg.GuildID, logger)
	return serve(ctx, cfg, rt, bot.Run, logger)
}

func serve(ctx context.Context, cfg Config, rt *Runtime, runBot func(context.Context) error, logger *zap.Logger) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	health := platformgrpc.NewHealthServer(HealthService)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("health server listening", zap.String("addr", lis.Addr().String()))
		return health.Serve(gctx, lis, timeouts.Shutdown)
	})
	g.Go(func() error {
		return runBot(gctx)
	})
	if addr := strings.TrimSpace(cfg.MetricsAddr); addr != "" {
		metricsServer := &http.Server{
			Addr:              addr,
			Handler:           rt.Metrics.Handler(),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
		g.Go(func() error {
			logger.Info("metrics server listening", zap.String("addr", addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve metrics: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}
	health.SetServing(true)
	return g.Wait()
}
