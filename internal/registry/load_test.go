package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/monograph/internal/config"
)

func rawProject(source string) *config.RawProjectConfig {
	return &config.RawProjectConfig{Source: source, Type: "library"}
}

func TestLoad(t *testing.T) {
	t.Run("normalizes paths and assigns declaration order", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"web": rawProject("./apps//web/"),
			"lib": rawProject("libs\\lib"),
		}

		projects, err := Load(raw, Options{Order: []string{"web", "lib"}})
		require.NoError(t, err)
		require.Len(t, projects, 2)

		assert.Equal(t, "apps/web", projects["web"].SourceRoot)
		assert.Equal(t, "libs/lib", projects["lib"].SourceRoot)
		assert.Equal(t, 0, projects["web"].DeclIndex)
		assert.Equal(t, 1, projects["lib"].DeclIndex)
	})

	t.Run("declaration order falls back to sorted IDs", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"b": rawProject("b"),
			"a": rawProject("a"),
			"c": rawProject("c"),
		}

		projects, err := Load(raw, Options{})
		require.NoError(t, err)
		assert.Equal(t, 0, projects["a"].DeclIndex)
		assert.Equal(t, 1, projects["b"].DeclIndex)
		assert.Equal(t, 2, projects["c"].DeclIndex)
	})

	t.Run("mismatched record ID fails", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"web": {ID: "other", Source: "apps/web"},
		}

		_, err := Load(raw, Options{})
		var invalid *InvalidConfigError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "web", invalid.ID)
	})

	t.Run("identical roots always fail", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"a": rawProject("shared/root"),
			"b": rawProject("shared/root"),
		}

		_, err := Load(raw, Options{AllowNestedProjects: true})
		var overlap *OverlappingRootError
		require.ErrorAs(t, err, &overlap)
	})

	t.Run("nested root fails by default", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"parent": rawProject("apps"),
			"child":  rawProject("apps/web"),
		}

		_, err := Load(raw, Options{})
		var overlap *OverlappingRootError
		require.ErrorAs(t, err, &overlap)
		assert.Equal(t, "child", overlap.ID)
		assert.Equal(t, "parent", overlap.OtherID)
	})

	t.Run("nested root allowed when enabled", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"parent": rawProject("apps"),
			"child":  rawProject("apps/web"),
		}

		projects, err := Load(raw, Options{AllowNestedProjects: true})
		require.NoError(t, err)
		assert.Len(t, projects, 2)
	})

	t.Run("sibling with shared name prefix is not an overlap", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"a": rawProject("apps"),
			"b": rawProject("apps-extra"),
		}

		_, err := Load(raw, Options{})
		assert.NoError(t, err)
	})

	t.Run("workspace-root project overlaps everything", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"root":  rawProject("."),
			"child": rawProject("libs/util"),
		}

		_, err := Load(raw, Options{})
		var overlap *OverlappingRootError
		require.ErrorAs(t, err, &overlap)
	})

	t.Run("root escaping the workspace fails", func(t *testing.T) {
		for _, source := range []string{"../outside", "/abs/path"} {
			raw := map[string]*config.RawProjectConfig{"x": rawProject(source)}
			_, err := Load(raw, Options{})
			var invalid *InvalidConfigError
			require.ErrorAs(t, err, &invalid, "source %q", source)
		}
	})

	t.Run("missing source root fails when existence check provided", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"ghost": rawProject("does/not/exist"),
		}

		_, err := Load(raw, Options{Exists: func(string) bool { return false }})
		var invalid *InvalidConfigError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "ghost", invalid.ID)
	})

	t.Run("unknown project type fails", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"x": {Source: "x", Type: "banana"},
		}

		_, err := Load(raw, Options{})
		var invalid *InvalidConfigError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("empty scope defaults to build", func(t *testing.T) {
		raw := map[string]*config.RawProjectConfig{
			"x": {Source: "x", DependsOn: []config.DependencyRef{{Target: "y", Kind: config.RefByID}}},
			"y": rawProject("y"),
		}

		projects, err := Load(raw, Options{})
		require.NoError(t, err)
		assert.Equal(t, config.ScopeBuild, projects["x"].DependsOn[0].Scope)
	})
}

func TestProjectMetadataPaths(t *testing.T) {
	p := &ProjectMetadata{
		ID:         "web",
		SourceRoot: "apps/web",
		FileGroups: map[string][]string{
			"sources": {"src/**/*.go"},
			"all":     {"**/*.json"},
			"shared":  {"/configs/global.json"},
		},
	}

	t.Run("contains path", func(t *testing.T) {
		assert.True(t, p.ContainsPath("apps/web"))
		assert.True(t, p.ContainsPath("apps/web/main.go"))
		assert.False(t, p.ContainsPath("apps/website/main.go"))
		assert.False(t, p.ContainsPath("libs/util/util.go"))
	})

	t.Run("file group match relative to root", func(t *testing.T) {
		assert.True(t, p.MatchesFileGroup("apps/web/src/a/b.go"))
		assert.False(t, p.MatchesFileGroup("apps/web/docs/readme.md"))
	})

	t.Run("catch-all pattern stays inside the project root", func(t *testing.T) {
		assert.True(t, p.MatchesFileGroup("apps/web/settings.json"))
		assert.False(t, p.MatchesFileGroup("libs/base/base.json"),
			"an unanchored pattern must never match another project's files")
		assert.False(t, p.MatchesFileGroup("libs/base/src/a.go"))
	})

	t.Run("leading slash anchors a pattern to the workspace root", func(t *testing.T) {
		assert.True(t, p.MatchesFileGroup("configs/global.json"))
		assert.False(t, p.MatchesFileGroup("other/global.json"))
	})
}
