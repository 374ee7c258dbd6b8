package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/sweep/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeXZ(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := xz.NewWriter(f)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello world\n")
	writeXZ(t, filepath.Join(dir, "nested", "b.txt.xz"), "price: €5\n")
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "漢字")
	writeFile(t, filepath.Join(dir, ".notes"), "漢字")

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", filepath.Join("nested", "b.txt.xz")}, c.Files)
	require.Len(t, c.Texts, 2)
	assert.Equal(t, "hello world\n", layout.Decode(c.Texts[0]))
	assert.Equal(t, "price: €5\n", layout.Decode(c.Texts[1]))
	assert.Equal(t, layout.Char(0x80), c.Texts[1][7])
	assert.Equal(t, 22, c.Chars())
	assert.Len(t, c.Digest, 64)

	t.Run("digest is stable", func(t *testing.T) {
		again, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, c.Digest, again.Digest)
	})

	t.Run("digest follows content", func(t *testing.T) {
		writeFile(t, filepath.Join(dir, "a.txt"), "hello world!\n")
		changed, err := Load(dir)
		require.NoError(t, err)
		assert.NotEqual(t, c.Digest, changed.Digest)
	})
}

func TestLoadSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "only.txt")
	writeFile(t, path, "abc")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"only.txt"}, c.Files)
	assert.Equal(t, 3, c.Chars())
}

func TestLoadErrors(t *testing.T) {
	t.Run("unencodable text names the file", func(t *testing.T) {
		dir := t.TempDir()
		bad := filepath.Join(dir, "bad.txt")
		writeFile(t, filepath.Join(dir, "good.txt"), "fine")
		writeFile(t, bad, "ok 漢")

		_, err := Load(dir)
		require.Error(t, err)

		var ferr *FileError
		require.True(t, errors.As(err, &ferr))
		assert.Equal(t, bad, ferr.Path)

		var eerr *layout.EncodeError
		require.True(t, errors.As(err, &eerr))
		assert.Equal(t, '漢', eerr.Rune)
	})

	t.Run("corrupt xz", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "broken.xz"), "not compressed")

		_, err := Load(dir)
		var ferr *FileError
		require.True(t, errors.As(err, &ferr))
		assert.Contains(t, err.Error(), "broken.xz")
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		var ferr *FileError
		assert.True(t, errors.As(err, &ferr))
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no corpus files")
	})
}

func TestFromStrings(t *testing.T) {
	c, err := FromStrings("ab", "c")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Chars())
	assert.Equal(t, []string{"text-0", "text-1"}, c.Files)

	_, err = FromStrings("漢")
	assert.Error(t, err)
}
