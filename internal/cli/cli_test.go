package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/monograph/internal/affected"
)

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(nil, out)
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, ".", cfg.WorkspacePath)
		assert.Equal(t, "hcl", cfg.Format)
		assert.Equal(t, affected.DirectionNone, cfg.Direction)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("positional workspace path", func(t *testing.T) {
		cfg, _, err := Parse([]string{"some/workspace"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "some/workspace", cfg.WorkspacePath)
	})

	t.Run("workspace flag beats positional", func(t *testing.T) {
		cfg, _, err := Parse([]string{"-workspace", "a", "b"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "a", cfg.WorkspacePath)
	})

	t.Run("changed list is split and trimmed", func(t *testing.T) {
		cfg, _, err := Parse([]string{"-changed", "a/x.go, b/y.go,", "."}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a/x.go", "b/y.go"}, cfg.Changed)
	})

	t.Run("help exits cleanly", func(t *testing.T) {
		out := &bytes.Buffer{}
		_, exit, err := Parse([]string{"-h"}, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("invalid values return exit code 2", func(t *testing.T) {
		cases := [][]string{
			{"-direction", "sideways"},
			{"-format", "toml"},
			{"-log-level", "loud"},
			{"-log-format", "xml"},
		}
		for _, args := range cases {
			_, _, err := Parse(args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr, "args %v", args)
			assert.Equal(t, 2, exitErr.Code)
		}
	})
}
