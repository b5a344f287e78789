package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/snbloader/internal/catalog"
	"github.com/dbsmedya/snbloader/internal/config"
	"github.com/dbsmedya/snbloader/internal/logger"
	"github.com/dbsmedya/snbloader/internal/partition"
	"github.com/dbsmedya/snbloader/internal/sink"
)

var planShowFiles bool

var planCmd = &cobra.Command{
	Use:   "plan [SOURCE1 [SOURCE2]]",
	Short: "Show the discovered catalog and every worker's assignment",
	Long: `Plan discovers the input files and shows how they are striped over all
loader instances and threads, without reading any file contents.

The plan shows:
  - Files found per vertex type and relation, in catalog order
  - The partition each worker writes
  - The files assigned to each worker (with --files)

Example:
  snbloader plan --num-loaders 4 --num-threads 8 /data/social_network /data/supp`,
	Args: sourceArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planShowFiles, "files", false,
		"List the files assigned to each worker")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cat, err := discover(cfg, log)
	if err != nil {
		return err
	}

	plan, err := partition.Plan(cat, cfg.Loader.NumLoaders, cfg.Loader.NumThreads)
	if err != nil {
		return err
	}

	printPlan(cfg, cat, plan)
	return nil
}

func printPlan(cfg *config.Config, cat *catalog.Catalog, plan [][]partition.Assignment) {
	printHeader("Load Plan: %s", cfg.Sink.GraphName)

	fmt.Fprintln(outputWriter)
	printSection("Overview")
	vertexFiles, edgeFiles := cat.Counts()
	fmt.Fprintf(outputWriter, "  Mode:         %s\n", cfg.Loader.Mode)
	fmt.Fprintf(outputWriter, "  Vertex files: %d\n", vertexFiles)
	fmt.Fprintf(outputWriter, "  Edge files:   %d\n", edgeFiles)
	fmt.Fprintf(outputWriter, "  Workers:      %d (%d loaders x %d threads)\n",
		cfg.TotalWorkers(), cfg.Loader.NumLoaders, cfg.Loader.NumThreads)

	fmt.Fprintln(outputWriter)
	printSection("Catalog")
	summary := cat.Summary()
	for el := summary.Front(); el != nil; el = el.Next() {
		fmt.Fprintf(outputWriter, "  %-40s %d\n", el.Key, el.Value)
	}

	for l, assignments := range plan {
		fmt.Fprintln(outputWriter)
		title := fmt.Sprintf("Loader %d", l)
		if l == cfg.Loader.LoaderIndex {
			title += " (this instance)"
		}
		printSection(title)
		for _, a := range assignments {
			p := sink.Partition{GraphName: cfg.Sink.GraphName, Part: a.PartNumber()}
			fmt.Fprintf(outputWriter, "  [%d] thread %d -> %s: %d files\n",
				a.Rank, a.Thread, p.Label(), len(a.Entries))
			if planShowFiles {
				for _, e := range a.Entries {
					fmt.Fprintf(outputWriter, "        %s\n", filepath.Base(e.Path))
				}
			}
		}
	}
	fmt.Fprintln(outputWriter)
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := len(title) + 4
	rule := strings.Repeat("=", width)
	fmt.Fprintln(outputWriter, rule)
	fmt.Fprintf(outputWriter, "  %s\n", color.Bold.Sprint(title))
	fmt.Fprintln(outputWriter, rule)
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", color.Cyan.Sprint(title))
	fmt.Fprintln(outputWriter, strings.Repeat("-", len(title)+2))
}
