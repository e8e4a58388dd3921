package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vk/monograph/internal/affected"
	"github.com/vk/monograph/internal/config"
	"github.com/vk/monograph/internal/ctxlog"
	"github.com/vk/monograph/internal/digest"
	"github.com/vk/monograph/internal/fsutil"
	"github.com/vk/monograph/internal/hclloader"
	"github.com/vk/monograph/internal/yamlloader"
)

// Config holds everything one CLI invocation needs.
type Config struct {
	WorkspacePath string
	// Format selects the configuration loader: "hcl" or "yaml".
	Format        string
	Query         string
	Changed       []string
	Direction     affected.Direction
	FingerprintID string
	LogFormat     string
	LogLevel      string
}

// NewConfig validates and normalizes a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkspacePath == "" {
		return nil, fmt.Errorf("workspace path is required")
	}
	if cfg.Format == "" {
		cfg.Format = "hcl"
	}
	if cfg.Format != "hcl" && cfg.Format != "yaml" {
		return nil, fmt.Errorf("unknown workspace format %q (expected hcl or yaml)", cfg.Format)
	}
	if cfg.Direction == "" {
		cfg.Direction = affected.DirectionNone
	}
	return &cfg, nil
}

// Loader returns the configured format's loader.
func (c *Config) Loader() config.Loader {
	if c.Format == "yaml" {
		return yamlloader.NewLoader()
	}
	return hclloader.NewLoader()
}

// Run executes one CLI invocation: build and validate the workspace graph,
// then perform whichever queries the config asks for, rendering results for
// humans on outW.
func Run(ctx context.Context, cfg *Config, outW io.Writer) error {
	logger := ctxlog.FromContext(ctx)

	pipeline := NewPipeline(cfg.WorkspacePath, cfg.Loader())
	if err := pipeline.Reload(ctx, nil); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			for _, v := range verr.Violations {
				fmt.Fprintln(outW, v.String())
			}
		}
		return err
	}
	g := pipeline.Graph()
	logger.Info("workspace graph built", "projects", g.Len(), "edges", len(g.Edges()))

	ran := false

	if cfg.Query != "" {
		ran = true
		matches, err := pipeline.Select(cfg.Query)
		if err != nil {
			return fmt.Errorf("query %q: %w", cfg.Query, err)
		}
		for _, p := range matches {
			fmt.Fprintln(outW, p.ID)
		}
	}

	if len(cfg.Changed) > 0 {
		ran = true
		set, err := pipeline.Affected(ctx, cfg.Changed, cfg.Direction)
		if err != nil {
			return err
		}
		for _, id := range set.IDs() {
			entry := set[id]
			if len(entry.Paths) > 0 {
				fmt.Fprintf(outW, "%s\t%s\t%s\n", id, entry.Reason, strings.Join(entry.Paths, ","))
			} else {
				fmt.Fprintf(outW, "%s\t%s\n", id, entry.Reason)
			}
		}
	}

	if cfg.FingerprintID != "" {
		ran = true
		files, err := fsutil.ListFiles(cfg.WorkspacePath)
		if err != nil {
			return fmt.Errorf("listing workspace files: %w", err)
		}
		fp, err := pipeline.Fingerprint(ctx, cfg.FingerprintID, digest.New(cfg.WorkspacePath), files)
		if err != nil {
			return err
		}
		fmt.Fprintln(outW, fp.Digest)
	}

	// With nothing else requested, print the topological build order.
	if !ran {
		for _, id := range g.TopologicalOrder() {
			fmt.Fprintln(outW, id)
		}
	}

	return nil
}
