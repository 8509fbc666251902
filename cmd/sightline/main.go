// Command sightline runs the signal consolidation pipeline from the
// command line: classify a business, execute a run against configured
// sources, and inspect the result cache.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sightlinehq/sightline/internal/logging"
)

var (
	configPath string
	useStderr  bool
)

func main() {
	root := &cobra.Command{
		Use:   "sightline",
		Short: "Multi-source signal consolidation and confidence scoring",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if useStderr {
				logging.InitWriter(os.Stderr)
				return nil
			}
			return logging.Init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config")
	root.PersistentFlags().BoolVar(&useStderr, "log-stderr", false, "log to stderr instead of the log file")

	root.AddCommand(newRunCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newCacheCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
