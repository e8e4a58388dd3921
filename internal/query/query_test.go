package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/monograph/internal/config"
	"github.com/vk/monograph/internal/graph"
	"github.com/vk/monograph/internal/registry"
)

func project(id string, typ config.ProjectType, language string, tags ...string) *registry.ProjectMetadata {
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}
	return &registry.ProjectMetadata{ID: id, Type: typ, Language: language, Tags: tagSet}
}

func mustParse(t *testing.T, expr string) Predicate {
	t.Helper()
	pred, err := Parse(expr)
	require.NoError(t, err, "parsing %q", expr)
	return pred
}

func TestParseErrors(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		_, err := Parse("color=red")
		var unknown *UnknownFieldError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "color", unknown.Field)
	})

	t.Run("syntax errors carry position and expectation", func(t *testing.T) {
		cases := []struct {
			expr string
			pos  int
		}{
			{"type=", 5},
			{"type library", 5},
			{"(type=library", 13},
			{"type=library &&", 15},
			{"type=library || || id=x", 16},
			{"&& type=library", 0},
			{"type=library,", 13},
		}
		for _, tc := range cases {
			_, err := Parse(tc.expr)
			var syn *SyntaxError
			require.ErrorAs(t, err, &syn, "expression %q", tc.expr)
			assert.Equal(t, tc.pos, syn.Position, "expression %q", tc.expr)
		}
	})

	t.Run("single ampersand is rejected", func(t *testing.T) {
		_, err := Parse("type=library & tag=x")
		var syn *SyntaxError
		require.ErrorAs(t, err, &syn)
		assert.Equal(t, 13, syn.Position)
	})

	t.Run("malformed glob fails at parse time", func(t *testing.T) {
		_, err := Parse("id~lib[")
		var bad *InvalidPatternError
		require.ErrorAs(t, err, &bad)
		assert.Equal(t, 3, bad.Position)
		assert.Equal(t, "lib[", bad.Pattern)

		_, err = Parse("id~libs/*,app[")
		require.ErrorAs(t, err, &bad, "every value in a comma list is validated")
		assert.Equal(t, "app[", bad.Pattern)

		_, err = Parse("id=lib[")
		assert.NoError(t, err, "only '~' comparisons treat the value as a pattern")
	})
}

func TestEvaluate(t *testing.T) {
	lib := project("libs/core", config.TypeLibrary, "go", "shared", "core")
	app := project("apps/web", config.TypeApplication, "ts", "frontend")

	cases := []struct {
		expr    string
		project *registry.ProjectMetadata
		want    bool
	}{
		{"type=library", lib, true},
		{"type=library", app, false},
		{"type!=library", app, true},
		{"language=go", lib, true},
		{"tag=shared", lib, true},
		{"tag=shared", app, false},
		{"tag!=shared", app, true},
		{"tag=shared,frontend", app, true},
		{"tag=missing,frontend", app, true},
		{"tag=missing,ghost", app, false},
		{"id~libs/*", lib, true},
		{"id~libs/*", app, false},
		{"tag~front*", app, true},
		{"type=library && tag=shared", lib, true},
		{"type=library && tag=frontend", lib, false},
		{"type=application || tag=shared", lib, true},
		{"!(type=application)", lib, true},
		{"!tag=shared && type=application", app, true},
		{"(type=library || type=tool) && tag=core", lib, true},
	}
	for _, tc := range cases {
		got := mustParse(t, tc.expr).Match(tc.project)
		assert.Equal(t, tc.want, got, "%q against %s", tc.expr, tc.project.ID)
	}
}

func TestSelect(t *testing.T) {
	raw := map[string]*config.RawProjectConfig{
		"x": {Source: "x", Type: "library", Tags: []string{"shared"}},
		"y": {Source: "y", Type: "library"},
		"z": {Source: "z", Type: "application", Tags: []string{"shared"}},
	}
	projects, err := registry.Load(raw, registry.Options{Order: []string{"x", "y", "z"}})
	require.NoError(t, err)
	g, err := graph.Build(context.Background(), projects, nil)
	require.NoError(t, err)

	t.Run("conjunction selects the exact subset", func(t *testing.T) {
		matches := Select(g, mustParse(t, "type=library && tag=shared"))
		require.Len(t, matches, 1)
		assert.Equal(t, "x", matches[0].ID)
	})

	t.Run("no matches yields empty result", func(t *testing.T) {
		assert.Empty(t, Select(g, mustParse(t, "language=cobol")))
	})

	t.Run("results follow declaration order", func(t *testing.T) {
		matches := Select(g, mustParse(t, "tag=shared"))
		require.Len(t, matches, 2)
		assert.Equal(t, "x", matches[0].ID)
		assert.Equal(t, "z", matches[1].ID)
	})
}
