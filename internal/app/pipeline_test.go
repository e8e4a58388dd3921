package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/monograph/internal/affected"
	"github.com/vk/monograph/internal/hclloader"
)

// fixtureWorkspace writes a small three-project HCL workspace:
// web (application) -> core (library) -> base (library).
func fixtureWorkspace(t *testing.T, extra map[string]string) string {
	t.Helper()
	files := map[string]string{
		"apps/web/project.hcl": `
project "web" {
  type       = "application"
  language   = "go"
  tags       = ["frontend"]
  depends_on = ["core"]

  file_group "sources" {
    patterns = ["**/*.go"]
  }
}
`,
		"libs/core/project.hcl": `
project "core" {
  type       = "library"
  tags       = ["shared"]
  depends_on = ["base"]

  file_group "sources" {
    patterns = ["**/*.go"]
  }
}
`,
		"libs/base/project.hcl": `
project "base" {
  type = "library"

  file_group "sources" {
    patterns = ["**/*.go"]
  }
}
`,
		"apps/web/main.go":  "package main\n",
		"libs/core/core.go": "package core\n",
		"libs/base/base.go": "package base\n",
	}
	for rel, content := range extra {
		files[rel] = content
	}

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestPipeline(t *testing.T) {
	t.Run("reload publishes a validated graph", func(t *testing.T) {
		pl := NewPipeline(fixtureWorkspace(t, nil), hclloader.NewLoader())
		require.Nil(t, pl.Graph())

		require.NoError(t, pl.Reload(context.Background(), nil))
		g := pl.Graph()
		require.NotNil(t, g)
		assert.Equal(t, 3, g.Len())
		assert.Equal(t, []string{"core"}, g.Dependencies("web"))
	})

	t.Run("reload swaps the graph atomically and keeps the old value on failure", func(t *testing.T) {
		root := fixtureWorkspace(t, nil)
		pl := NewPipeline(root, hclloader.NewLoader())
		require.NoError(t, pl.Reload(context.Background(), nil))
		published := pl.Graph()

		// Introduce a cycle and reload; the published graph must survive.
		cyclic := filepath.Join(root, "libs", "base", "project.hcl")
		require.NoError(t, os.WriteFile(cyclic, []byte(`
project "base" {
  type       = "library"
  depends_on = ["web"]
}
`), 0o600))

		err := pl.Reload(context.Background(), nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "cyclic dependency")
		assert.Same(t, published, pl.Graph())
	})

	t.Run("constraint violations are aggregated", func(t *testing.T) {
		root := fixtureWorkspace(t, map[string]string{
			"workspace.hcl": `
constraint "no-lib-on-lib" {
  effect = "deny"
  source {
    type = ["library"]
  }
  target {
    type = ["library"]
  }
}
`,
		})
		pl := NewPipeline(root, hclloader.NewLoader())

		err := pl.Reload(context.Background(), nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Violations, 1)
		assert.Equal(t, "core", verr.Violations[0].From)
		assert.Equal(t, "base", verr.Violations[0].To)
	})

	t.Run("select and affected work against the published graph", func(t *testing.T) {
		pl := NewPipeline(fixtureWorkspace(t, nil), hclloader.NewLoader())
		require.NoError(t, pl.Reload(context.Background(), nil))

		matches, err := pl.Select("type=library && tag=shared")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "core", matches[0].ID)

		set, err := pl.Affected(context.Background(), []string{"libs/base/base.go"}, affected.DirectionDownstream)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"base", "core", "web"}, set.IDs())
	})

	t.Run("inferred dependencies join the graph", func(t *testing.T) {
		pl := NewPipeline(fixtureWorkspace(t, nil), hclloader.NewLoader())
		require.NoError(t, pl.Reload(context.Background(), map[string][]string{
			"web": {"base", "github.com/outside/pkg"},
		}))

		assert.ElementsMatch(t, []string{"core", "base"}, pl.Graph().Dependencies("web"))
	})
}

func TestPipelineFingerprint(t *testing.T) {
	root := fixtureWorkspace(t, nil)
	pl := NewPipeline(root, hclloader.NewLoader())
	require.NoError(t, pl.Reload(context.Background(), nil))

	files := []string{"apps/web/main.go", "libs/core/core.go", "libs/base/base.go"}
	digester := staticDigester{"deadbeef"}

	first, err := pl.Fingerprint(context.Background(), "web", digester, files)
	require.NoError(t, err)
	second, err := pl.Fingerprint(context.Background(), "web", digester, files)
	require.NoError(t, err)
	assert.Equal(t, first.Digest, second.Digest)

	_, err = pl.Fingerprint(context.Background(), "nope", digester, files)
	assert.ErrorContains(t, err, "unknown project")
}

type staticDigester struct{ digest string }

func (s staticDigester) Digest(ctx context.Context, path string) (string, error) {
	return s.digest, nil
}
