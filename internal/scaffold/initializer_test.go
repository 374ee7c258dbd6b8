package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/sweep/internal/config"
	"github.com/dyluth/sweep/internal/corpus"
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, false))

	for _, file := range projectFiles {
		info, err := os.Stat(filepath.Join(dir, file.Path))
		require.NoError(t, err, file.Path)
		assert.Equal(t, file.Permissions, info.Mode().Perm())
	}

	cfg, err := config.Load(filepath.Join(dir, "sweep.yml"))
	require.NoError(t, err)
	assert.Equal(t, "heuristic", cfg.Model)
	assert.Equal(t, config.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, filepath.Join(dir, ".sweep", "runs.db"), cfg.Store.Path)

	l, err := layout.ReadFile(cfg.Layout)
	require.NoError(t, err)
	_, err = layout.Annotate(l)
	require.NoError(t, err)

	c, err := corpus.Load(cfg.Corpus)
	require.NoError(t, err)
	assert.Greater(t, c.Chars(), 0)
}

func TestInitializeForce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, false))

	cfgPath := filepath.Join(dir, "sweep.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("garbage"), 0644))

	require.NoError(t, Initialize(dir, true))
	_, err := config.Load(cfgPath)
	assert.NoError(t, err)
}

func TestCheckExisting(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		assert.NoError(t, CheckExisting(t.TempDir()))
	})

	t.Run("one file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sweep.yml"), nil, 0644))

		err := CheckExisting(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "project already initialized")
		assert.Contains(t, err.Error(), "Found existing: sweep.yml")
		assert.Contains(t, err.Error(), "sweep init --force")
	})

	t.Run("initialized project", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, Initialize(dir, false))

		err := CheckExisting(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "  - layout.json")
		assert.Contains(t, err.Error(), "  - corpus/sample.txt")
	})
}
