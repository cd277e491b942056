package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/louisbranch/muster/internal/app/server"
	"github.com/louisbranch/muster/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, server.Options{}); err != nil {
		config.Exitf("failed to run server: %v", err)
	}
}
