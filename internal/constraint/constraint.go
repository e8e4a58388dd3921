// Package constraint enforces workspace boundary rules on dependency edges.
// Rules are read-only configuration: allow rules whitelist what a matching
// source may depend on, deny rules forbid specific source/target pairings and
// take precedence over any allow. Validation never short-circuits; every
// violation in the graph is collected in one pass.
package constraint

import (
	"context"
	"fmt"

	"github.com/vk/monograph/internal/config"
	"github.com/vk/monograph/internal/ctxlog"
	"github.com/vk/monograph/internal/graph"
	"github.com/vk/monograph/internal/registry"
)

// Selector matches projects by attribute. An empty Types list matches any
// type; every listed tag must be present on the project.
type Selector struct {
	Types []config.ProjectType
	Tags  []string
}

// Matches reports whether a project satisfies the selector.
func (s Selector) Matches(p *registry.ProjectMetadata) bool {
	if len(s.Types) > 0 {
		found := false
		for _, t := range s.Types {
			if p.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, tag := range s.Tags {
		if !p.HasTag(tag) {
			return false
		}
	}
	return true
}

// Rule is one boundary constraint evaluated per edge.
type Rule struct {
	Name   string
	Effect config.ConstraintEffect
	Source Selector
	Target Selector
}

// Violation reports one edge breaking one rule.
type Violation struct {
	Rule Rule
	From string
	To   string
}

func (v Violation) String() string {
	name := v.Rule.Name
	if name == "" {
		name = string(v.Rule.Effect)
	}
	return fmt.Sprintf("dependency %s -> %s violates constraint %q", v.From, v.To, name)
}

// FromConfig translates loader-level constraint records into rules.
func FromConfig(configs []config.ConstraintConfig) []Rule {
	rules := make([]Rule, 0, len(configs))
	for _, c := range configs {
		rules = append(rules, Rule{
			Name:   c.Name,
			Effect: c.Effect,
			Source: selectorFromConfig(c.Source),
			Target: selectorFromConfig(c.Target),
		})
	}
	return rules
}

func selectorFromConfig(s config.SelectorConfig) Selector {
	sel := Selector{Tags: append([]string(nil), s.Tags...)}
	for _, t := range s.Types {
		sel.Types = append(sel.Types, config.ProjectType(t))
	}
	return sel
}

// Validate evaluates every edge against every rule and returns all
// violations. Deny rules beat allow rules on conflict: an edge matching a
// deny is a violation even when an allow also covers it. When one or more
// allow rules match an edge's source, the edge must match at least one of
// them end to end; sources matched by no allow rule are unrestricted.
func Validate(ctx context.Context, g *graph.Graph, rules []Rule) []Violation {
	logger := ctxlog.FromContext(ctx)

	var violations []Violation
	for _, e := range g.Edges() {
		from := g.At(e.From)
		to := g.At(e.To)

		denied := false
		for _, r := range rules {
			if r.Effect == config.EffectDeny && r.Source.Matches(from) && r.Target.Matches(to) {
				violations = append(violations, Violation{Rule: r, From: from.ID, To: to.ID})
				denied = true
			}
		}
		if denied {
			continue
		}

		var sourceRules []Rule
		allowed := false
		for _, r := range rules {
			if r.Effect != config.EffectAllow || !r.Source.Matches(from) {
				continue
			}
			sourceRules = append(sourceRules, r)
			if r.Target.Matches(to) {
				allowed = true
			}
		}
		if len(sourceRules) > 0 && !allowed {
			violations = append(violations, Violation{Rule: sourceRules[0], From: from.ID, To: to.ID})
		}
	}

	logger.Debug("constraint validation complete", "rules", len(rules), "violations", len(violations))
	return violations
}
