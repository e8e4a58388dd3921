// Package yamlloader implements config.Loader for YAML workspaces: an
// optional workspace.yml at the root plus a project.yml per project
// directory. It produces the same format-agnostic model as the HCL loader,
// so the rest of the pipeline never knows which syntax a workspace uses.
package yamlloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vk/monograph/internal/config"
	"github.com/vk/monograph/internal/ctxlog"
	"github.com/vk/monograph/internal/fsutil"
	"github.com/vk/monograph/internal/registry"
)

// WorkspaceFileName is the optional workspace-level settings file.
const WorkspaceFileName = "workspace.yml"

// ProjectFileName is the per-project definition file.
const ProjectFileName = "project.yml"

// Loader is the YAML-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML workspace loader.
func NewLoader() *Loader {
	return &Loader{}
}

type workspaceFile struct {
	AllowNestedProjects bool             `yaml:"allowNestedProjects"`
	Constraints         []constraintYAML `yaml:"constraints"`
}

type constraintYAML struct {
	Name   string       `yaml:"name"`
	Effect string       `yaml:"effect"`
	Source selectorYAML `yaml:"source"`
	Target selectorYAML `yaml:"target"`
}

type selectorYAML struct {
	Types []string `yaml:"types"`
	Tags  []string `yaml:"tags"`
}

type projectFile struct {
	Project    string              `yaml:"project"`
	Type       string              `yaml:"type"`
	Language   string              `yaml:"language"`
	Tags       []string            `yaml:"tags"`
	DependsOn  []dependsOnEntry    `yaml:"dependsOn"`
	FileGroups map[string][]string `yaml:"fileGroups"`
}

// dependsOnEntry accepts either a bare reference string or a mapping with an
// explicit scope:
//
//	dependsOn:
//	  - lib
//	  - '#shared'
//	  - on: tools/gen
//	    scope: development
type dependsOnEntry struct {
	On    string
	Scope string
}

func (d *dependsOnEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&d.On)
	case yaml.MappingNode:
		var long struct {
			On    string `yaml:"on"`
			Scope string `yaml:"scope"`
		}
		if err := node.Decode(&long); err != nil {
			return err
		}
		d.On = long.On
		d.Scope = long.Scope
		return nil
	}
	return fmt.Errorf("line %d: dependsOn entries must be strings or mappings", node.Line)
}

// Load discovers and parses every workspace and project file under root.
func (l *Loader) Load(ctx context.Context, root string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := config.NewModel()

	wsPath := filepath.Join(root, WorkspaceFileName)
	if data, err := os.ReadFile(wsPath); err == nil {
		if err := l.mergeWorkspace(data, model); err != nil {
			return nil, fmt.Errorf("in %s: %w", wsPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", wsPath, err)
	}

	projectFiles, err := fsutil.FindFilesByName(root, ProjectFileName)
	if err != nil {
		return nil, fmt.Errorf("discovering project files: %w", err)
	}
	logger.Debug("discovered project files", "count", len(projectFiles))

	for _, file := range projectFiles {
		if err := l.mergeProjectFile(root, file, model); err != nil {
			return nil, err
		}
	}

	logger.Debug("YAML workspace loaded", "projects", len(model.Projects), "constraints", len(model.Constraints))
	return model, nil
}

func (l *Loader) mergeWorkspace(data []byte, model *config.Model) error {
	var ws workspaceFile
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return err
	}

	model.AllowNestedProjects = ws.AllowNestedProjects
	for _, c := range ws.Constraints {
		effect := config.ConstraintEffect(c.Effect)
		if effect != config.EffectAllow && effect != config.EffectDeny {
			return fmt.Errorf("constraint %q: effect must be \"allow\" or \"deny\", got %q", c.Name, c.Effect)
		}
		model.Constraints = append(model.Constraints, config.ConstraintConfig{
			Name:   c.Name,
			Effect: effect,
			Source: config.SelectorConfig{Types: c.Source.Types, Tags: c.Source.Tags},
			Target: config.SelectorConfig{Types: c.Target.Types, Tags: c.Target.Tags},
		})
	}
	return nil
}

func (l *Loader) mergeProjectFile(root, file string, model *config.Model) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}
	if pf.Project == "" {
		return fmt.Errorf("in %s: missing required \"project\" field", file)
	}

	source, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil {
		return fmt.Errorf("relativizing %s: %w", file, err)
	}

	rc := &config.RawProjectConfig{
		ID:         pf.Project,
		Source:     filepath.ToSlash(source),
		Language:   pf.Language,
		Type:       pf.Type,
		Tags:       pf.Tags,
		FileGroups: pf.FileGroups,
	}
	for _, dep := range pf.DependsOn {
		rc.DependsOn = append(rc.DependsOn, config.ParseDependencyRef(dep.On, config.DependencyScope(dep.Scope), false))
	}

	if _, dup := model.Projects[rc.ID]; dup {
		return &registry.DuplicateIDError{ID: rc.ID}
	}
	model.Projects[rc.ID] = rc
	model.Order = append(model.Order, rc.ID)
	return nil
}
