// Package fsutil provides file system helpers for manifest discovery.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindByExtension resolves a configured path into the files carrying the
// given extension. A directory is walked recursively in lexical order; a
// plain file is returned as-is when its name matches. A path that does not
// exist yields no files and no error, since hosts treat absent manifest
// locations as empty.
func FindByExtension(path, extension string) ([]string, error) {
	if extension == "" {
		panic("fsutil: extension must not be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("access %s: %w", path, err)
	}

	if !info.IsDir() {
		if strings.HasSuffix(info.Name(), extension) {
			return []string{path}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
