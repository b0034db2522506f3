// Package main runs the Rootmarks API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	"github.com/rootmarks/rootmarks-server/internal/di"
	"github.com/rootmarks/rootmarks-server/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	started := time.Now()
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "rootmarks: failed to start: %v\n", err)
		// Release whatever was opened before the failure.
		_ = injector.Shutdown()
		return 1
	}

	log := do.MustInvoke[*logger.Logger](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down", "uptime", time.Since(started).Round(time.Second))

	// do shuts services down in reverse dependency order, so the HTTP
	// server stops taking requests before the store closes.
	if err := injector.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown error")
	}

	log.Info("Shutdown complete")
	return 0
}
