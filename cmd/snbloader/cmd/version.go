package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		writeVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func writeVersion(w io.Writer) {
	fmt.Fprintf(w, "snbloader version %s\n", Version)
	fmt.Fprintf(w, "  Commit:    %s\n", Commit)
	fmt.Fprintf(w, "  Toolchain: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
