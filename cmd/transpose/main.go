// Command transpose operates on a persisted scene file: it creates a
// merged transpose target from selected objects, applies an edited
// target back to its source objects, and exports meshes for
// inspection.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "transpose"})
)

var rootCmd = &cobra.Command{
	Use:   "transpose",
	Short: "Edit many independently-subdivided meshes as one, then propagate the edits back",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file with convergence defaults")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
