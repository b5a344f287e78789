package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/snbloader/internal/catalog"
	"github.com/dbsmedya/snbloader/internal/config"
	"github.com/dbsmedya/snbloader/internal/logger"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

// sourceArgs accepts the optional SOURCE1 (base) and SOURCE2 (supplementary) directories.
var sourceArgs = cobra.MaximumNArgs(2)

// loadConfig reads the config file, or the defaults when the file is absent
// and --config was not given, then applies flag and positional overrides.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	path := GetConfigFile()

	var cfg *config.Config
	_, statErr := os.Stat(path)
	explicit := cmd.Flag("config") != nil && cmd.Flag("config").Changed
	if statErr == nil || explicit {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.LoadDefaults()
	}

	overrides := GetCLIOverrides()
	if len(args) > 0 {
		overrides.BaseDir = args[0]
	}
	if len(args) > 1 {
		overrides.SupplementaryDir = args[1]
	}
	cfg.ApplyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// discover builds the catalog for the configured directories and mode.
func discover(cfg *config.Config, log *logger.Logger) (*catalog.Catalog, error) {
	mode, err := catalog.ParseMode(cfg.Loader.Mode)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Discover(cfg.Loader.BaseDir, cfg.Loader.SupplementaryDir, mode, log)
	if err != nil {
		return nil, fmt.Errorf("catalog discovery failed: %w", err)
	}
	return cat, nil
}

// logEffectiveConfig echoes the run parameters once at startup.
func logEffectiveConfig(log *logger.Logger, cfg *config.Config) {
	log.Infow("Effective configuration",
		"mode", cfg.Loader.Mode,
		"num_loaders", cfg.Loader.NumLoaders,
		"loader_index", cfg.Loader.LoaderIndex,
		"num_threads", cfg.Loader.NumThreads,
		"base_dir", cfg.Loader.BaseDir,
		"supplementary_dir", cfg.Loader.SupplementaryDir,
		"sink", cfg.Sink.Kind,
		"graph_name", cfg.Sink.GraphName,
		"output_dir", cfg.Sink.OutputDir,
		"report_interval", cfg.Report.IntervalSeconds,
		"report_format", cfg.Report.Format,
	)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			log.Warn("Received shutdown signal - stopping workers...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
