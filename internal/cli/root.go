package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mkarlsen/rivalmap/pkg/buildinfo"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	verbose    bool
	configPath string
}

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra prints usage errors itself; runtime errors arrive here.
		printError("%v", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "rivalmap",
		Short: "Layered comparison maps between competitive programs",
		Long: `Rivalmap computes layered comparison diagrams between two programs
in a weighted contest graph: the canonical (strongest) path between
them, every simple path within a hop bound, and collision-free 2D
positions ready for rendering.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if flags.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	cmd.SetVersionTemplate(buildinfo.Template())
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to rivalmap.toml")

	cmd.AddCommand(
		newLayoutCmd(flags),
		newServeCmd(flags),
		newIngestCmd(flags),
		newDatasetsCmd(flags),
		newCacheCmd(flags),
		newCompletionCmd(),
	)
	return cmd
}

// loadConfig resolves the configuration for a command invocation.
func (f *rootFlags) loadConfig() (Config, error) {
	return LoadConfig(f.configPath)
}
