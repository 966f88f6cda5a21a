// Package cmd holds the startup helpers shared by the clientdocs binaries:
// env-then-flags config parsing and the telemetry-wrapped run loop.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/ashmont/clientdocs/internal/platform/config"
	"github.com/ashmont/clientdocs/internal/platform/otel"
)

const defaultTelemetryShutdownTimeout = 5 * time.Second

// Service names reported to the tracing backend. The grantkey binary is not
// listed; it never touches storage or the network, so it runs untraced.
const (
	ServicePortal      = "portal"
	ServiceSeed        = "seed"
	ServiceMaintenance = "maintenance"
)

// RunOptions controls shared entrypoint behavior for service commands.
type RunOptions struct {
	// ShutdownTimeout sets the timeout used when stopping telemetry.
	ShutdownTimeout time.Duration
}

// ParseConfig loads environment defaults into cfg. Callers register flags
// afterwards with the loaded values as flag defaults, so flags win over env.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry sets up tracing for the named service, executes run, and
// flushes pending spans before returning.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return RunWithTelemetryAndOptions(ctx, service, RunOptions{}, run)
}

// RunWithTelemetryAndOptions is RunWithTelemetry with an explicit flush
// timeout, for short-lived commands that cannot wait out a stalled exporter.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer flushTelemetry(service, shutdown, options.ShutdownTimeout)
	return run(ctx)
}

// flushTelemetry stops the exporter under its own deadline so a hung
// collector cannot block command exit.
func flushTelemetry(service string, shutdown func(context.Context) error, timeout time.Duration) {
	if timeout <= 0 {
		timeout = defaultTelemetryShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("%s telemetry shutdown: %v", service, err)
	}
}
