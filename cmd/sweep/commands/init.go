package commands

import (
	"fmt"

	"github.com/dyluth/sweep/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Initialize a new sweep project",
	Long: `Initialize a new sweep project with a default configuration.

Creates:
  • sweep.yml - Project configuration file
  • layout.json - QWERTY starting layout
  • corpus/sample.txt - A small sample corpus
  • .sweep/ - Local run records

DIR defaults to the current directory.

Use --force to reinitialize an existing project (WARNING: replaces the existing files).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Force reinitialization (replaces sweep.yml, layout.json and corpus/sample.txt)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if !forceInit {
		if err := scaffold.CheckExisting(dir); err != nil {
			return err
		}
	}

	if err := scaffold.Initialize(dir, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess()
	return nil
}
