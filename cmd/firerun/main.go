// Package main runs fire and erodibility-decay ensembles from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	firerun "firescar/internal/cmd/firerun"
	"firescar/internal/platform/config"
)

func main() {
	cfg, err := firerun.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exit(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.Exit(firerun.Run(ctx, cfg, os.Stdout, os.Stderr))
}
