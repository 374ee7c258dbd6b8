// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/dyluth/sweep/pkg/layout"
	"github.com/stretchr/testify/require"
)

// RepoRoot returns the module root directory.
func RepoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// QwertyPath is the path of the three-layer QWERTY reference layout:
// letters on the home layer with OSL(2), space, OSL(1) and shift on the
// thumbs, symbols on layer 1 and a numpad on layer 2.
func QwertyPath() string {
	return filepath.Join(RepoRoot(), "pkg", "layout", "testdata", "qwerty.json")
}

// QwertyLayout loads the QWERTY reference layout.
func QwertyLayout(t testing.TB) layout.Layout {
	t.Helper()
	l, err := layout.ReadFile(QwertyPath())
	require.NoError(t, err)
	return l
}

// QwertyAnnotated loads and annotates the QWERTY reference layout.
func QwertyAnnotated(t testing.TB) *layout.Annotated {
	t.Helper()
	al, err := layout.Annotate(QwertyLayout(t))
	require.NoError(t, err)
	return al
}

// SampleCorpus is a short English text typable on the reference layout.
var SampleCorpus = []string{
	"The quick brown fox jumps over the lazy dog.\n",
	"Pack my box with five dozen liquor jugs!\n",
	"func main() { fmt.Println(\"hello, world\") }\n",
	"if (a[i] >= 10 && b != nil) { return x + y * 2; }\n",
	"Email me at someone@example.com: it costs £25 (or $30) ~ 20% off.\n",
}

// Corpus encodes SampleCorpus.
func Corpus(t testing.TB) [][]layout.Char {
	t.Helper()
	out := make([][]layout.Char, len(SampleCorpus))
	for i, s := range SampleCorpus {
		chars, err := layout.Encode(s)
		require.NoError(t, err)
		out[i] = chars
	}
	return out
}
