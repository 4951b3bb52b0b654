// Package dexctl implements the operator CLI for the dex database and the
// running bot.
package dexctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/rowedex/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/rowedex/internal/platform/grpc"
	"github.com/louisbranch/rowedex/internal/platform/logging"
	"github.com/louisbranch/rowedex/internal/platform/requestctx"
	server "github.com/louisbranch/rowedex/internal/services/dex/app"
	"github.com/louisbranch/rowedex/internal/services/dex/disclosure"
	dexsqlite "github.com/louisbranch/rowedex/internal/services/dex/storage/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Env holds defaults read from the environment before flags apply.
type Env struct {
	DBPath     string `env:"ROWEDEX_DB_PATH" envDefault:"data/rowedex.db"`
	HealthAddr string `env:"ROWEDEX_DEX_HEALTH_ADDR" envDefault:"localhost:8095"`
	LogLevel   string `env:"ROWEDEX_LOG_LEVEL" envDefault:"warn"`
}

type options struct {
	dbPath   string
	locale   string
	logLevel string
	out      io.Writer
}

// NewRootCommand builds the dexctl command tree writing results to out.
func NewRootCommand(out io.Writer) (*cobra.Command, error) {
	var env Env
	if err := entrypoint.ParseConfig(&env); err != nil {
		return nil, err
	}
	opts := &options{out: out}

	root := &cobra.Command{
		Use:           entrypoint.ServiceDexCtl,
		Short:         "Inspect and manage the dex database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.dbPath, "db", env.DBPath, "Path to the dex SQLite database")
	root.PersistentFlags().StringVar(&opts.locale, "locale", "en-US", "Locale for user-facing messages")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", env.LogLevel, "Log level (debug, info, warn, error)")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database schema, optionally loading a seed script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, _ := cmd.Flags().GetString("seed")
			return runInit(cmd.Context(), opts, seed)
		},
	}
	initCmd.Flags().String("seed", "", "SQL file to run after the schema is applied")

	lookupCmd := &cobra.Command{
		Use:   "lookup <name-or-id>",
		Short: "Render the summary card for an entity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), opts, func(ctx context.Context, rt *server.Runtime) error {
				body, err := rt.Lookup.Lookup(ctx, strings.Join(args, " "))
				fmt.Fprint(opts.out, body.Text())
				return err
			})
		},
	}

	suggestCmd := &cobra.Command{
		Use:   "suggest [prefix]",
		Short: "List autocomplete candidates for a name prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partial := ""
			if len(args) == 1 {
				partial = args[0]
			}
			return withRuntime(cmd.Context(), opts, func(ctx context.Context, rt *server.Runtime) error {
				candidates, err := rt.Search.Suggest(ctx, partial)
				if err != nil {
					return err
				}
				for _, c := range candidates {
					fmt.Fprintf(opts.out, "%d\t%s\n", c.ID, c.Name)
				}
				return nil
			})
		},
	}

	viewsCmd := &cobra.Command{
		Use:   "views <name-or-id>",
		Short: "List the drill-down controls offered for an entity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), opts, func(ctx context.Context, rt *server.Runtime) error {
				entity, err := rt.Resolver.Resolve(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				views, err := disclosure.ViewsFor(entity)
				if err != nil {
					return err
				}
				for _, v := range views {
					fmt.Fprintf(opts.out, "%s\t%s\n", v.ControlID, v.Label)
				}
				return nil
			})
		},
	}

	routeCmd := &cobra.Command{
		Use:   "route <control-id>",
		Short: "Dispatch a control id as if it had been clicked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), opts, func(ctx context.Context, rt *server.Runtime) error {
				out := rt.Router.Route(ctx, args[0])
				fmt.Fprint(opts.out, out.Reply.Text())
				return out.Err
			})
		},
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check that a running bot reports SERVING",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := platformgrpc.Probe(ctx, addr, server.HealthService, nil); err != nil {
				return fmt.Errorf("%s not serving: %w", addr, err)
			}
			fmt.Fprintf(opts.out, "%s SERVING\n", addr)
			return nil
		},
	}
	healthCmd.Flags().String("addr", env.HealthAddr, "Health server address")
	healthCmd.Flags().Duration("timeout", 5*time.Second, "How long to wait for SERVING")

	root.AddCommand(initCmd, lookupCmd, suggestCmd, viewsCmd, routeCmd, healthCmd)
	return root, nil
}

func runInit(ctx context.Context, opts *options, seedPath string) error {
	if err := dexsqlite.Bootstrap(ctx, opts.dbPath); err != nil {
		return err
	}
	if seedPath != "" {
		script, err := os.ReadFile(seedPath)
		if err != nil {
			return fmt.Errorf("read seed: %w", err)
		}
		if err := dexsqlite.Seed(ctx, opts.dbPath, string(script)); err != nil {
			return err
		}
	}
	fmt.Fprintf(opts.out, "initialized %s\n", opts.dbPath)
	return nil
}

func withRuntime(ctx context.Context, opts *options, fn func(context.Context, *server.Runtime) error) error {
	logger, err := logging.New(entrypoint.ServiceDexCtl, opts.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.Run(ctx, entrypoint.ServiceDexCtl, entrypoint.Options{Logger: logger}, func(ctx context.Context) error {
		rt, err := server.Build(opts.dbPath, logger, nil)
		if err != nil {
			return err
		}
		defer func() {
			if err := rt.Close(); err != nil {
				logger.Warn("close dex store", zap.Error(err))
			}
		}()
		ctx = requestctx.WithInteraction(ctx, requestctx.Interaction{Kind: "cli", Locale: opts.locale})
		return fn(ctx, rt)
	})
}
