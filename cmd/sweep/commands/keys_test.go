package commands

import (
	"strings"
	"testing"

	"github.com/dyluth/sweep/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysCommand(t *testing.T) {
	qwerty := testutil.QwertyPath()

	t.Run("one-shot compression by default", func(t *testing.T) {
		stdout, _, err := execute(t, "keys", "--layout", qwerty, "Hi")
		require.NoError(t, err)
		assert.Contains(t, stdout, "mod)")
		assert.NotContains(t, stdout, "Hold(")
	})

	t.Run("raw events", func(t *testing.T) {
		stdout, _, err := execute(t, "keys", "--layout", qwerty, "--raw", "Hi")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Hold(")
		assert.Contains(t, stdout, "Release(")
	})

	t.Run("replay types the input", func(t *testing.T) {
		for _, raw := range []bool{false, true} {
			args := []string{"keys", "--layout", qwerty, "--replay", "x = (42);"}
			if raw {
				args = append(args, "--raw")
			}
			stdout, _, err := execute(t, args...)
			require.NoError(t, err)
			assert.Contains(t, stdout, `"x = (42);"`)
			assert.NotContains(t, stdout, "replay differs")
		}
	})

	t.Run("reads standard input", func(t *testing.T) {
		prev := stdin
		stdin = strings.NewReader("ab\n")
		t.Cleanup(func() { stdin = prev })

		stdout, _, err := execute(t, "keys", "--layout", qwerty)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(stdout, "Tap("))
	})

	t.Run("untypable text", func(t *testing.T) {
		_, stderr, err := execute(t, "keys", "--layout", qwerty, "漢")
		require.Error(t, err)
		assert.Equal(t, "text cannot be typed", err.Error())
		assert.Contains(t, stderr, "Windows-1252")
	})
}
