package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/sweep/internal/printer"
	"github.com/dyluth/sweep/internal/scaffold"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args, capturing everything it prints.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	prevNoColor := color.NoColor
	color.NoColor = true
	var out, errOut bytes.Buffer
	restore := printer.SetOutput(&out, &errOut)
	defer func() {
		restore()
		color.NoColor = prevNoColor
	}()

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = Execute()
	return out.String(), errOut.String(), err
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// newProject scaffolds a project in a temp dir and optionally replaces its
// sweep.yml. It returns the config path.
func newProject(t *testing.T, config string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, scaffold.Initialize(dir, false))
	path := filepath.Join(dir, "sweep.yml")
	if config != "" {
		require.NoError(t, os.WriteFile(path, []byte(config), 0644))
	}
	return path
}

// quickConfig is a project config that finishes in well under a second.
const quickConfig = `version: "1.0"
model: simple
corpus: corpus
layout: layout.json
output: best.json
schedule:
  mode: fixed
  iterations: 300
trials:
  count: 2
  seed: 7
  workers: 2
store:
  backend: sqlite
  path: .sweep/runs.db
`

// newCorpusDir writes a one-file corpus and returns its directory.
func newCorpusDir(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "text.txt"), []byte(text), 0644))
	return dir
}
