// Package fsutil provides file system discovery helpers for workspace loading.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindFilesByName recursively searches rootPath for files with an exact base
// name, skipping hidden directories. It returns their full paths in walk
// (lexical) order, which keeps discovery deterministic.
func FindFilesByName(rootPath string, name string) ([]string, error) {
	if name == "" {
		panic("name must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// ListFiles returns every regular file under rootPath as a workspace-relative
// slash path, skipping hidden directories. The listing feeds the hasher's
// file group matching.
func ListFiles(rootPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
