package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dyluth/sweep/internal/config"
	"github.com/dyluth/sweep/internal/printer"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep - keyboard layout optimiser for 34-key split keyboards",
	Long: `Sweep searches for an assignment of characters to the keys of a
34-key, multi-layer split keyboard (such as the Ferris Sweep) that minimises
the estimated effort of typing a text corpus.

Layouts are scored by one of three cost models and improved by simulated
annealing, with independent trials run in parallel.`,
	Version: version,
	// Prevent silent success when a flag is given without a subcommand
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !verbose {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()
	if err != nil && !printer.IsReported(err) {
		printer.Error(fmt.Sprintf("Error: %v", err), "", nil)
	}
	return err
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: sweep.yml, sweep.yaml or sweep.toml in the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
}

// loadConfig reads the project configuration. When no file is given and
// none is found, optional commands fall back to the defaults.
func loadConfig(required bool) (*config.SweepConfig, error) {
	path := configFile
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			if !required {
				return config.Default(), nil
			}
			return nil, printer.Error(
				"no sweep configuration found",
				err.Error(),
				[]string{"Create a project first:\n  sweep init", "Or point at a config file:\n  sweep --config path/to/sweep.yml ..."},
			)
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, printer.ErrorWithContext(
			"invalid configuration",
			err.Error(),
			map[string]string{"file": path},
			[]string{"Compare with a fresh project:\n  sweep init /tmp/example"},
		)
	}
	return cfg, nil
}

// stdin is read by commands that accept text on standard input.
var stdin io.Reader = os.Stdin
