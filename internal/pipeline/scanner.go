package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"surveypipe/internal/errors"
)

// supportedExtensions are the container and exchange formats the
// pipeline knows how to read
var supportedExtensions = []string{".sas7bdat", ".sav", ".csv"}

// ignoredFolders are never descended into during scanning
var ignoredFolders = map[string]struct{}{
	"results":                   {},
	"resultados":                {},
	".git":                      {},
	".backups":                  {},
	"$recycle.bin":              {},
	"system volume information": {},
}

// IsSupported reports whether the path has a readable extension
func IsSupported(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range supportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ScanFiles returns the supported files under root, sorted. A root
// that is itself a supported file is returned as-is. Ignored folders
// are skipped entirely.
func ScanFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", root)
	}
	if !info.IsDir() {
		if IsSupported(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, ignored := ignoredFolders[strings.ToLower(d.Name())]; ignored {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", root)
	}
	sort.Strings(files)
	return files, nil
}
