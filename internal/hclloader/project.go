package hclloader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/monograph/internal/config"
)

type projectFileRoot struct {
	Projects []*projectBlock `hcl:"project,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type projectBlock struct {
	ID           string             `hcl:"id,label"`
	Type         string             `hcl:"type,optional"`
	Language     string             `hcl:"language,optional"`
	Tags         []string           `hcl:"tags,optional"`
	DependsOn    []string           `hcl:"depends_on,optional"`
	Dependencies []*dependencyBlock `hcl:"dependency,block"`
	FileGroups   []*fileGroupBlock  `hcl:"file_group,block"`
}

// dependencyBlock is the long-form dependency declaration, used when a
// reference needs a non-default scope.
type dependencyBlock struct {
	On    string `hcl:"on"`
	Scope string `hcl:"scope,optional"`
}

// fileGroupBlock keeps patterns as a raw expression so translation can accept
// any value convertible to a list of strings.
type fileGroupBlock struct {
	Name     string         `hcl:"name,label"`
	Patterns hcl.Expression `hcl:"patterns"`
}

// decodeProjects translates every project block in a file body. The source
// root of each project is the directory holding its file.
func decodeProjects(body hcl.Body, source string) ([]*config.RawProjectConfig, error) {
	var root projectFileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding project blocks: %s", diags.Error())
	}

	out := make([]*config.RawProjectConfig, 0, len(root.Projects))
	for _, pb := range root.Projects {
		rc, err := translateProject(pb, source)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, nil
}

func translateProject(pb *projectBlock, source string) (*config.RawProjectConfig, error) {
	rc := &config.RawProjectConfig{
		ID:         pb.ID,
		Source:     source,
		Language:   pb.Language,
		Type:       pb.Type,
		Tags:       pb.Tags,
		FileGroups: make(map[string][]string, len(pb.FileGroups)),
	}

	for _, raw := range pb.DependsOn {
		rc.DependsOn = append(rc.DependsOn, config.ParseDependencyRef(raw, config.ScopeBuild, false))
	}
	for _, dep := range pb.Dependencies {
		rc.DependsOn = append(rc.DependsOn, config.ParseDependencyRef(dep.On, config.DependencyScope(dep.Scope), false))
	}

	for _, fg := range pb.FileGroups {
		if _, dup := rc.FileGroups[fg.Name]; dup {
			return nil, fmt.Errorf("project %q: duplicate file group %q", pb.ID, fg.Name)
		}
		patterns, err := stringListValue(fg.Patterns)
		if err != nil {
			return nil, fmt.Errorf("project %q: file group %q: %w", pb.ID, fg.Name, err)
		}
		rc.FileGroups[fg.Name] = patterns
	}

	return rc, nil
}

// stringListValue evaluates an expression and converts it to a []string,
// accepting any cty value convertible to a list of strings.
func stringListValue(expr hcl.Expression) ([]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating patterns: %s", diags.Error())
	}

	converted, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("patterns must be a list of strings: %w", err)
	}
	if converted.IsNull() {
		return nil, nil
	}

	var out []string
	for it := converted.ElementIterator(); it.Next(); {
		_, v := it.Element()
		out = append(out, v.AsString())
	}
	return out, nil
}
