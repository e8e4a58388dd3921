// Package hclloader implements config.Loader for HCL workspaces: one
// optional workspace.hcl at the root plus a project.hcl per project
// directory. Only translation happens here; all semantic validation belongs
// to the registry and resolver.
package hclloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/monograph/internal/config"
	"github.com/vk/monograph/internal/ctxlog"
	"github.com/vk/monograph/internal/fsutil"
	"github.com/vk/monograph/internal/registry"
)

// WorkspaceFileName is the optional workspace-level settings file.
const WorkspaceFileName = "workspace.hcl"

// ProjectFileName is the per-project definition file.
const ProjectFileName = "project.hcl"

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL workspace loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers and parses every workspace and project file under root.
func (l *Loader) Load(ctx context.Context, root string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := config.NewModel()
	parser := hclparse.NewParser()

	wsPath := filepath.Join(root, WorkspaceFileName)
	if _, err := os.Stat(wsPath); err == nil {
		if err := l.loadWorkspaceFile(parser, wsPath, model); err != nil {
			return nil, err
		}
	}

	projectFiles, err := fsutil.FindFilesByName(root, ProjectFileName)
	if err != nil {
		return nil, fmt.Errorf("discovering project files: %w", err)
	}
	logger.Debug("discovered project files", "count", len(projectFiles))

	for _, file := range projectFiles {
		if err := l.loadProjectFile(parser, root, file, model); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL workspace loaded", "projects", len(model.Projects), "constraints", len(model.Constraints))
	return model, nil
}

type workspaceRoot struct {
	Workspace   *workspaceBlock    `hcl:"workspace,block"`
	Constraints []*constraintBlock `hcl:"constraint,block"`
	Remain      hcl.Body           `hcl:",remain"`
}

type workspaceBlock struct {
	AllowNestedProjects bool `hcl:"allow_nested_projects,optional"`
}

type constraintBlock struct {
	Name   string         `hcl:"name,label"`
	Effect string         `hcl:"effect"`
	Source *selectorBlock `hcl:"source,block"`
	Target *selectorBlock `hcl:"target,block"`
}

type selectorBlock struct {
	Types []string `hcl:"type,optional"`
	Tags  []string `hcl:"tag,optional"`
}

func (l *Loader) loadWorkspaceFile(parser *hclparse.Parser, path string, model *config.Model) error {
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("parsing %s: %s", path, diags.Error())
	}

	var ws workspaceRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &ws); diags.HasErrors() {
		return fmt.Errorf("decoding %s: %s", path, diags.Error())
	}

	if ws.Workspace != nil {
		model.AllowNestedProjects = ws.Workspace.AllowNestedProjects
	}
	for _, c := range ws.Constraints {
		cc, err := translateConstraint(c)
		if err != nil {
			return fmt.Errorf("in %s: %w", path, err)
		}
		model.Constraints = append(model.Constraints, cc)
	}
	return nil
}

func translateConstraint(c *constraintBlock) (config.ConstraintConfig, error) {
	effect := config.ConstraintEffect(c.Effect)
	if effect != config.EffectAllow && effect != config.EffectDeny {
		return config.ConstraintConfig{}, fmt.Errorf("constraint %q: effect must be \"allow\" or \"deny\", got %q", c.Name, c.Effect)
	}
	cc := config.ConstraintConfig{Name: c.Name, Effect: effect}
	if c.Source != nil {
		cc.Source = config.SelectorConfig{Types: c.Source.Types, Tags: c.Source.Tags}
	}
	if c.Target != nil {
		cc.Target = config.SelectorConfig{Types: c.Target.Types, Tags: c.Target.Tags}
	}
	return cc, nil
}

func (l *Loader) loadProjectFile(parser *hclparse.Parser, root, file string, model *config.Model) error {
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return fmt.Errorf("parsing %s: %s", file, diags.Error())
	}

	source, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil {
		return fmt.Errorf("relativizing %s: %w", file, err)
	}
	source = filepath.ToSlash(source)

	projects, err := decodeProjects(hclFile.Body, source)
	if err != nil {
		return fmt.Errorf("in %s: %w", file, err)
	}

	for _, p := range projects {
		if _, dup := model.Projects[p.ID]; dup {
			return &registry.DuplicateIDError{ID: p.ID}
		}
		model.Projects[p.ID] = p
		model.Order = append(model.Order, p.ID)
	}
	return nil
}
