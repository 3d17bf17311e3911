package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/star/tlekit/cmd/tlekit/commands"
)

// Version information (set via ldflags during build)
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, Version, Commit); err != nil {
		os.Exit(1)
	}
}
