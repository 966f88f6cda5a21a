// Package main provides maintenance utilities for portal storage.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	entrypoint "github.com/ashmont/clientdocs/internal/platform/cmd"
	"github.com/ashmont/clientdocs/internal/platform/config"
	"github.com/ashmont/clientdocs/internal/tools/maintenance"
)

func main() {
	cfg, err := maintenance.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	// Cron-style invocation: a stalled trace exporter must not hold the job
	// open past its deadline.
	opts := entrypoint.RunOptions{ShutdownTimeout: 2 * time.Second}
	err = entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceMaintenance, opts, func(context.Context) error {
		return maintenance.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
