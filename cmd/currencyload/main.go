// Command currencyload is a one-off batch job that loads a currency
// exchange-rate CSV into a local SQLite table, replacing any existing
// table of the same name. Connection-level storage failures are reported
// but do not fail the process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"vacstat/internal/config"
	"vacstat/internal/errors"
	"vacstat/internal/infrastructure"
	"vacstat/internal/storage"
	"vacstat/pkg/contracts"
)

func main() {
	csvPath := flag.String("csv", "", "currency CSV to load (defaults to the configured path)")
	dbPath := flag.String("db", "", "SQLite database path (defaults to the configured path)")
	table := flag.String("table", "", "destination table name (defaults to the configured name)")
	configPath := flag.String("config", "", "path to a YAML config file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString())
		return
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if *csvPath != "" {
		cfg.Database.CurrencyCSV = *csvPath
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *table != "" {
		cfg.Database.Table = *table
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.NewRunContext(context.Background())

	if err := run(ctx, logger, cfg.Database); err != nil {
		if errors.IsType(err, errors.ErrTypeStorage) {
			// Storage failures are reported but swallowed: the loader must
			// not fail the host process.
			logger.ErrorContext(ctx, "storage error during currency load",
				slog.String("error", err.Error()))
			return
		}
		logger.ErrorContext(ctx, "currency load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads the configured currency CSV into the configured table.
func run(ctx context.Context, logger *slog.Logger, cfg config.DatabaseConfig) error {
	store, err := storage.NewStore(logger, cfg.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WarnContext(ctx, "failed to close database", slog.String("error", err.Error()))
		} else {
			logger.InfoContext(ctx, "database connection closed")
		}
	}()

	rows, err := store.LoadCSV(ctx, cfg.CurrencyCSV, cfg.Table)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "currency load finished",
		slog.String("table", cfg.Table),
		slog.Int("rows", rows))

	return nil
}
