package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/logging"
	"github.com/danielpatrickdp/trajeval/internal/store"
)

// Exit codes
const (
	exitPass       = 0
	exitRegression = 1
	exitUsage      = 2
)

var (
	// errRegression is returned when at least one comparison failed the gate.
	errRegression = errors.New("regression detected")
	errNoStore    = errors.New("--db (or TRAJEVAL_DB) is required")
)

var (
	configPath string
	dbPath     string
	namespace  string
	logLevel   string
	logJSON    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	switch {
	case err == nil:
		os.Exit(exitPass)
	case errors.Is(err, errRegression):
		os.Exit(exitRegression)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitUsage)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trajeval",
		Short:         "Compare agent tool-call trajectories against baselines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", os.Getenv("TRAJEVAL_CONFIG"), "YAML config file")
	pf.StringVar(&dbPath, "db", os.Getenv("TRAJEVAL_DB"), "SQLite baseline store")
	pf.StringVar(&namespace, "namespace", "", "tool name prefix in scope (overrides config)")
	pf.StringVar(&logLevel, "log-level", "warn", "debug|info|warn|error")
	pf.BoolVar(&logJSON, "log-json", false, "JSON log output")

	root.AddCommand(
		newCompareCmd(),
		newBatchCmd(),
		newBaselineCmd(),
		newHistoryCmd(),
		newValidateCmd(),
	)
	return root
}

// #region helpers

// loadConfig resolves defaults, the config file, TRAJEVAL_* variables and
// the --namespace flag, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	var err error
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			return config.Config{}, err
		}
	}
	if cfg, err = config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("namespace") {
		cfg.NamespacePrefix = namespace
	}
	return cfg, cfg.Validate()
}

func newLogger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(logging.LoggerConfig{Level: level, JSON: logJSON}), nil
}

// openStore opens the --db store. required makes a missing flag an error;
// otherwise a nil store is returned.
func openStore(required bool) (*store.Store, error) {
	if dbPath == "" {
		if required {
			return nil, errNoStore
		}
		return nil, nil
	}
	return store.NewStore(dbPath)
}

// #endregion helpers
