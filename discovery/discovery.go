// Package discovery finds candidate source files for a language under a
// workspace root: extension-filtered, with build output and dependency
// directories pruned and .gitignore rules honored.
package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// prunedDirs are never descended into regardless of gitignore contents.
var prunedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"out":          true,
	"__pycache__":  true,
}

// FindFiles walks root and returns every file whose extension is in
// extensions, sorted for a deterministic analysis order.
func FindFiles(root string, extensions []string) ([]string, error) {
	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	// Missing or unreadable .gitignore just disables rule matching.
	matcher, _ := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))

	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if entry.IsDir() {
			if path == root {
				return nil
			}
			name := entry.Name()
			if strings.HasPrefix(name, ".") || prunedDirs[name] {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if !extSet[ext] {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
