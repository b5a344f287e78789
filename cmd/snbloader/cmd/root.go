package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/snbloader/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile        string
	logLevel       string
	logFormat      string
	mode           string
	numLoaders     int
	loaderIdx      int
	numThreads     int
	reportInterval int
	reportFormat   string
	sinkKind       string
	graphName      string
	outputDir      string
)

var rootCmd = &cobra.Command{
	Use:   "snbloader",
	Short: "Partitioned parallel loader for LDBC SNB datasets",
	Long: `A bulk loader that turns an LDBC SNB interactive dataset into a graph
image, split into one partition per worker.

Features:
  - Deterministic striping of input files across loaders and threads
  - Typed property coercion (dates, lists, integers)
  - Edge lists grouped per source vertex
  - bbolt image files or MySQL tables as graph sinks
  - Periodic progress table and Prometheus metrics`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "snbloader.yaml",
		"Path to configuration file (defaults apply when the file is absent)")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	rootCmd.PersistentFlags().StringVar(&mode, "mode", "",
		"What to load: nodes, edges or all")
	rootCmd.PersistentFlags().IntVar(&numLoaders, "num-loaders", 0,
		"Total number of loader instances")
	rootCmd.PersistentFlags().IntVar(&loaderIdx, "loader-idx", 0,
		"Index of this loader instance, 0-based")
	rootCmd.PersistentFlags().IntVar(&numThreads, "num-threads", 0,
		"Worker threads per loader instance")

	rootCmd.PersistentFlags().IntVar(&reportInterval, "report-int", 0,
		"Seconds between progress rows")
	rootCmd.PersistentFlags().StringVar(&reportFormat, "report-fmt", "",
		"Progress columns: l L f F d D T")

	rootCmd.PersistentFlags().StringVar(&sinkKind, "sink", "",
		"Graph sink: image, mysql or discard")
	rootCmd.PersistentFlags().StringVar(&graphName, "graph-name", "",
		"Graph name used in partition labels")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "",
		"Directory for image files")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag override values. Numeric flags are
// only set when given on the command line, whatever their value.
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:       logLevel,
		LogFormat:      logFormat,
		Mode:           mode,
		NumLoaders:     changedInt("num-loaders", numLoaders),
		LoaderIndex:    changedInt("loader-idx", loaderIdx),
		NumThreads:     changedInt("num-threads", numThreads),
		ReportInterval: changedInt("report-int", reportInterval),
		ReportFormat:   reportFormat,
		SinkKind:       sinkKind,
		GraphName:      graphName,
		OutputDir:      outputDir,
	}
}

func changedInt(name string, v int) *int {
	if f := rootCmd.PersistentFlags().Lookup(name); f == nil || !f.Changed {
		return nil
	}
	return &v
}
