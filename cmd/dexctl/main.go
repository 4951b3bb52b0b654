// Package main runs the dexctl operator CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/rowedex/internal/cmd/dexctl"
	"github.com/louisbranch/rowedex/internal/platform/config"
)

func main() {
	root, err := dexctl.NewRootCommand(os.Stdout)
	config.ExitOnError(err, "dexctl config")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		config.Exitf("dexctl: %v", err)
	}
}
