package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamio90/zus-retirement-simulator-sub000/config"
	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
	"github.com/kamio90/zus-retirement-simulator-sub000/factory"
	"github.com/kamio90/zus-retirement-simulator-sub000/logging"
	"github.com/kamio90/zus-retirement-simulator-sub000/providers/table"
	"github.com/kamio90/zus-retirement-simulator-sub000/store/sqlite"
)

var (
	// Global flags
	configPath string
	logLevel   string

	// Set up by PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Retirement pension simulator for the notional defined-contribution scheme",
	Long: `Projects a worker's contributions through annual and quarterly valorization
into a base capital, divides it by remaining life expectancy and reports the
monthly pension in nominal and anchor-year terms.

Data sources are pluggable: "demo" uses built-in formulas, "table" reads
tables from a SQLite store (see seed) or a JSON/YAML file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "simulator.yaml", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(seedCmd)
}

// providerSet is an opened provider bundle and the resources behind it.
type providerSet struct {
	providers engine.Providers
	source    table.Source // nil for the demo bundle
	close     func() error
}

// openProviders builds the bundle selected by the configuration.
func openProviders(ctx context.Context) (*providerSet, error) {
	set := &providerSet{close: func() error { return nil }}

	if cfg.Providers.Kind == factory.KindTable {
		if cfg.Providers.TablesFile != "" {
			set.source = factory.FileSource{Path: cfg.Providers.TablesFile}
		} else {
			store, err := sqlite.New(cfg.Providers.StorePath)
			if err != nil {
				return nil, fmt.Errorf("failed to open table store: %w", err)
			}
			set.source = store
			set.close = store.Close
		}
	}

	p, err := factory.NewProviders(ctx, cfg.Providers.Kind, set.source)
	if err != nil {
		_ = set.close()
		return nil, err
	}
	set.providers = p
	return set, nil
}
