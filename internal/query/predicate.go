package query

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/vk/monograph/internal/graph"
	"github.com/vk/monograph/internal/registry"
)

// Predicate is a compiled, side-effect-free query over project attributes.
type Predicate interface {
	Match(p *registry.ProjectMetadata) bool
}

// Select returns the projects matching pred, in declaration order. The scan
// is O(nodes); no index is maintained since graphs are rebuilt far more often
// than they are queried.
func Select(g *graph.Graph, pred Predicate) []*registry.ProjectMetadata {
	var out []*registry.ProjectMetadata
	for _, p := range g.Projects() {
		if pred.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

type field int

const (
	fieldID field = iota
	fieldLanguage
	fieldType
	fieldTag
)

func fieldByName(name string) (field, bool) {
	switch name {
	case "id":
		return fieldID, true
	case "language":
		return fieldLanguage, true
	case "type":
		return fieldType, true
	case "tag":
		return fieldTag, true
	}
	return 0, false
}

type compareOp int

const (
	opEq compareOp = iota
	opNeq
	opGlob
)

// term is one field comparison; multiple values are alternatives.
type term struct {
	field  field
	op     compareOp
	values []string
}

func (t term) Match(p *registry.ProjectMetadata) bool {
	attrs := t.attributes(p)
	hit := false
	for _, v := range t.values {
		for _, a := range attrs {
			if t.op == opGlob {
				if ok, err := doublestar.Match(v, a); err == nil && ok {
					hit = true
				}
			} else if v == a {
				hit = true
			}
		}
	}
	if t.op == opNeq {
		return !hit
	}
	return hit
}

// attributes returns the project values the term compares against; tag terms
// compare against every tag.
func (t term) attributes(p *registry.ProjectMetadata) []string {
	switch t.field {
	case fieldID:
		return []string{p.ID}
	case fieldLanguage:
		return []string{p.Language}
	case fieldType:
		return []string{string(p.Type)}
	case fieldTag:
		return p.TagList()
	}
	return nil
}

type andPredicate []Predicate

func (a andPredicate) Match(p *registry.ProjectMetadata) bool {
	for _, pred := range a {
		if !pred.Match(p) {
			return false
		}
	}
	return true
}

type orPredicate []Predicate

func (o orPredicate) Match(p *registry.ProjectMetadata) bool {
	for _, pred := range o {
		if pred.Match(p) {
			return true
		}
	}
	return false
}

type notPredicate struct {
	inner Predicate
}

func (n notPredicate) Match(p *registry.ProjectMetadata) bool {
	return !n.inner.Match(p)
}
