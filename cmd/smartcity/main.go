// Smart City Core - municipal control center.
//
// This is the main entry point. It supervises the transport, lighting,
// security and energy subsystems through the central controller, wraps
// them in the configured access, logging and caching proxies, and exposes
// them to an operator console and a read-mostly HTTP API.
//
// Alerts and events fan out to the console, the MQTT bus, the SQLite audit
// export and InfluxDB, each of which is optional.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nerrad567/smartcity-core/internal/infrastructure/config"
	"github.com/nerrad567/smartcity-core/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath      = "configs/config.yaml"
	defaultMonitorInterval = 30 * time.Second
)

// flags holds the parsed command line.
type flags struct {
	configPath      string
	envFile         string
	noConsole       bool
	monitorInterval time.Duration
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// With the console enabled it returns when the operator quits; otherwise
// it runs monitoring passes until ctx is cancelled.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	if err := loadEnvFile(f.envFile); err != nil {
		return fmt.Errorf("loading %s: %w", f.envFile, err)
	}

	cfg, path, err := loadConfig(f.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting Smart City Core",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", path,
	)

	app, err := newApp(ctx, cfg, log, stdout, !f.noConsole)
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.healthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	if f.noConsole {
		app.ctrl.StartSystem()
		log.Info("initialisation complete, waiting for shutdown signal",
			"monitor_interval", f.monitorInterval.String())
		app.monitorLoop(ctx, f.monitorInterval)
	} else if err := app.runConsole(ctx, stdin, stdout); err != nil {
		return err
	}

	log.Info("shutting down")
	if app.ctrl.IsRunning() {
		app.ctrl.StopSystem()
	}
	log.Info("Smart City Core stopped")
	return nil
}

func parseFlags(args []string) (flags, error) {
	set := pflag.NewFlagSet("smartcity", pflag.ContinueOnError)
	var f flags
	set.StringVarP(&f.configPath, "config", "c", "", "path to config.yaml (default $SMARTCITY_CONFIG or "+defaultConfigPath+")")
	set.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before the config; ignored if missing")
	set.BoolVar(&f.noConsole, "no-console", false, "run headless with periodic monitoring instead of the operator console")
	set.DurationVar(&f.monitorInterval, "monitor-interval", defaultMonitorInterval, "interval between headless monitoring passes")
	if err := set.Parse(args); err != nil {
		return flags{}, err
	}
	if f.monitorInterval <= 0 {
		return flags{}, fmt.Errorf("--monitor-interval must be positive")
	}
	return f, nil
}

// loadEnvFile loads name into the environment without overriding
// variables that are already set.
func loadEnvFile(name string) error {
	if name == "" {
		return nil
	}
	err := godotenv.Load(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// getConfigPath returns the flag value, then SMARTCITY_CONFIG, then the
// default path.
func getConfigPath(flagValue string) (path string, explicit bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if path := os.Getenv("SMARTCITY_CONFIG"); path != "" {
		return path, true
	}
	return defaultConfigPath, false
}

// loadConfig loads the configured file. A missing default file falls back
// to built-in defaults; a missing explicit file is an error.
func loadConfig(flagValue string) (*config.Config, string, error) {
	path, explicit := getConfigPath(flagValue)
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			cfg := config.Default()
			if err := cfg.Validate(); err != nil {
				return nil, "", err
			}
			return cfg, "(defaults)", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
