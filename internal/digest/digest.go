// Package digest is the repo's file-digest collaborator: a sha256 content
// digester over a workspace root. The graph core only ever sees the
// hasher.Digester interface, so tests swap this out for fakes.
package digest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileDigester digests files beneath a workspace root.
type FileDigester struct {
	root string
}

// New creates a digester rooted at the workspace directory.
func New(root string) *FileDigester {
	return &FileDigester{root: root}
}

// Digest returns the hex sha256 of the file at a workspace-relative path.
func (d *FileDigester) Digest(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sum := sha256.New()
	if _, err := io.Copy(sum, f); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}
