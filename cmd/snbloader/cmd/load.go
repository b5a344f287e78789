package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/snbloader/internal/config"
	"github.com/dbsmedya/snbloader/internal/loader"
	"github.com/dbsmedya/snbloader/internal/logger"
	"github.com/dbsmedya/snbloader/internal/partition"
	"github.com/dbsmedya/snbloader/internal/sink"
	"github.com/dbsmedya/snbloader/internal/stats"
)

var loadForce bool

var loadCmd = &cobra.Command{
	Use:   "load [SOURCE1 [SOURCE2]]",
	Short: "Load this instance's slice of the dataset into the graph sink",
	Long: `Load discovers the input files, takes this loader's stripe of them and
runs one worker per thread, each writing its own graph partition.

SOURCE1 is the generator output directory, SOURCE2 the directory holding
merged person files and reverse-indexed edge files. Both override the
config file.

The load process follows these steps:
  1. Discover vertex and edge files in a fixed, sorted order
  2. Stripe the files over numLoaders * numThreads workers
  3. Parse, coerce and batch every file of this loader's workers
  4. Print a progress row every report interval until all files are done

Example:
  snbloader load --num-loaders 2 --loader-idx 0 --num-threads 4 /data/social_network /data/supp`,
	Args: sourceArgs,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadForce, "force", false,
		"Skip the MySQL advisory lock for this loader index (use with caution)")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	logEffectiveConfig(log, cfg)

	ctx, cancel := signalContext(context.Background(), log)
	defer cancel()

	factory, cleanup, err := openSinkFactory(ctx, cfg, log, loadForce)
	if err != nil {
		return err
	}
	defer cleanup()

	var reg *prometheus.Registry
	if cfg.Metrics.Listen != "" {
		reg = prometheus.NewRegistry()
		stop := startMetricsServer(cfg.Metrics.Listen, reg, log)
		defer stop()
	}

	result, err := runPipeline(ctx, cfg, log, factory, reg)
	if result != nil {
		printResult("Load", result)
	}
	if err != nil {
		if isCancelled(err) {
			log.Warn("Load cancelled by user")
		}
		return fmt.Errorf("load failed: %w", err)
	}
	return nil
}

// runPipeline discovers, partitions and runs this loader's workers.
func runPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger, factory sink.Factory, reg *prometheus.Registry) (*loader.Result, error) {
	cat, err := discover(cfg, log)
	if err != nil {
		return nil, err
	}
	vertexFiles, edgeFiles := cat.Counts()
	log.Infow("Catalog discovered", "vertex_files", vertexFiles, "edge_files", edgeFiles)

	assignments, err := partition.Assign(cat, cfg.Loader.NumLoaders, cfg.Loader.LoaderIndex, cfg.Loader.NumThreads)
	if err != nil {
		return nil, err
	}

	format, err := stats.ParseFormat(cfg.Report.Format)
	if err != nil {
		return nil, err
	}

	opts := loader.Options{
		GraphName:      cfg.Sink.GraphName,
		OutputDir:      cfg.Sink.OutputDir,
		ReportInterval: time.Duration(cfg.Report.IntervalSeconds) * time.Second,
		ReportFormat:   format,
		ReportOut:      outputWriter,
		Logger:         log,
	}
	if reg != nil {
		opts.Registerer = reg
	}

	coord, err := loader.NewCoordinator(assignments, factory, opts)
	if err != nil {
		return nil, err
	}
	return coord.Run(ctx)
}

func printResult(title string, result *loader.Result) {
	fmt.Fprintf(outputWriter, "\n=== %s Complete ===\n", title)
	fmt.Fprintf(outputWriter, "Run: %s\n", result.RunID)
	fmt.Fprintf(outputWriter, "Duration: %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(outputWriter, "Vertices: %d\n", result.Counts.Vertices)
	fmt.Fprintf(outputWriter, "Edge Lists: %d\n", result.Counts.Batches)
	fmt.Fprintf(outputWriter, "Edges: %d\n", result.Counts.Edges)
	fmt.Fprintf(outputWriter, "Success: %v\n", result.Success)

	for _, w := range result.Workers {
		status := w.State.String()
		if w.Err != nil {
			status = fmt.Sprintf("%s (%v)", status, w.Err)
		}
		fmt.Fprintf(outputWriter, "  worker %d -> part%d: %d files, %d vertices, %d edges, %s\n",
			w.Rank, w.Part, w.Files, w.Counts.Vertices, w.Counts.Edges, status)
	}
}
