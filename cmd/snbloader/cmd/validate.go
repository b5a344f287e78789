package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/snbloader/internal/config"
	"github.com/dbsmedya/snbloader/internal/database"
	"github.com/dbsmedya/snbloader/internal/lock"
	"github.com/dbsmedya/snbloader/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate [SOURCE1 [SOURCE2]]",
	Short: "Validate configuration and input directories",
	Long: `Validate checks the configuration and the input directories without
loading anything.

Checks performed:
  - Configuration syntax and required fields
  - Loader index, thread and report format parameters
  - Input directories are readable and contain files for the mode
  - Database connectivity and loader lock state (mysql sink only)

Example:
  snbloader validate --config snbloader.yaml`,
	Args: sourceArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Fprintf(outputWriter, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(outputWriter, "Config file: %s\n", GetConfigFile())

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		fmt.Fprintf(outputWriter, "❌ %v\n", err)
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintf(outputWriter, "✅ Configuration is valid\n")

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cat, err := discover(cfg, log)
	if err != nil {
		fmt.Fprintf(outputWriter, "❌ %v\n", err)
		return fmt.Errorf("validation failed")
	}
	vertexFiles, edgeFiles := cat.Counts()
	if cat.Len() == 0 {
		fmt.Fprintf(outputWriter, "❌ No input files found for mode %s\n", cfg.Loader.Mode)
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintf(outputWriter, "✅ Found %d vertex files and %d edge files\n", vertexFiles, edgeFiles)

	if cfg.Sink.Kind == config.SinkMySQL {
		if err := validateSinkDatabase(cmd.Context(), cfg); err != nil {
			fmt.Fprintf(outputWriter, "❌ %v\n", err)
			return fmt.Errorf("validation failed")
		}
	}

	fmt.Fprintln(outputWriter, "=== Validation Complete ===")
	return nil
}

func validateSinkDatabase(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	dbManager := database.NewManager(&cfg.Sink.MySQL, database.WithRetry(0, time.Second))
	if err := dbManager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to sink database: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	running, err := lock.IsLoaderRunning(ctx, dbManager.DB, cfg.Sink.GraphName, cfg.Loader.LoaderIndex)
	if err != nil {
		return fmt.Errorf("failed to check loader lock: %w", err)
	}
	fmt.Fprintf(outputWriter, "✅ Sink database reachable\n")
	if running {
		fmt.Fprintf(outputWriter, "⚠️  Loader %d of graph %q is currently running elsewhere\n",
			cfg.Loader.LoaderIndex, cfg.Sink.GraphName)
	}
	return nil
}
