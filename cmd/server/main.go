package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/kubenetlabs/pipeline-demo/internal/config"
	"github.com/kubenetlabs/pipeline-demo/internal/server"
	"github.com/kubenetlabs/pipeline-demo/pkg/version"
)

func main() {
	cfg, showVersion, err := loadConfig(os.Args[1:], os.LookupEnv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if showVersion {
		fmt.Printf("pipeline-demo %s\n", version.String())
		os.Exit(0)
	}

	logger, err := cfg.NewLogger(os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger = logger.With("instance", uuid.NewString())
	slog.SetDefault(logger)

	slog.Info("starting pipeline demo server",
		"addr", cfg.Addr(),
		"metrics_addr", cfg.MetricsAddr,
		"debug", cfg.Debug,
		"version", version.Version,
		"commit", version.Commit,
	)
	if cfg.Debug {
		slog.Warn("debug mode enabled: panic details are returned to clients")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration with precedence flags > environment >
// config file > defaults, then validates it.
func loadConfig(args []string, lookup func(string) (string, bool), stderr io.Writer) (config.Config, bool, error) {
	fs := flag.NewFlagSet("pipeline-demo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to a YAML config file")
	host := fs.String("host", "", "Listen host (default 0.0.0.0)")
	port := fs.Int("port", 0, "HTTP server listen port (default 5000)")
	debug := fs.Bool("debug", false, "Return panic details to clients and log at debug level")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "Log format: json or text")
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address (disabled when empty)")
	shutdownTimeout := fs.Duration("shutdown-timeout", 0, "Grace period for in-flight requests on shutdown")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, false, err
	}
	if fs.NArg() > 0 {
		return config.Config{}, false, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *showVersion {
		return config.Config{}, true, nil
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return cfg, false, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, false, fmt.Errorf("environment: %w", err)
	}

	// Only flags given on the command line override file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "debug":
			cfg.Debug = *debug
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "shutdown-timeout":
			cfg.ShutdownTimeout = *shutdownTimeout
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, false, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, false, nil
}

