package codebase

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// SourceExt is the extension of the files a codebase loads.
const SourceExt = ".cs"

var skipDirs = map[string]struct{}{
	"bin":          {},
	"obj":          {},
	"node_modules": {},
	"packages":     {},
}

// Discover returns the source files below root in sorted order. Hidden
// entries, build output directories, paths matched by root's .gitignore
// and paths matched by one of the exclude patterns are skipped.
func Discover(root string, exclude []string) ([]string, error) {
	gi := loadGitignore(root)
	ex := ignore.CompileIgnoreLines(exclude...)

	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 || filepath.Ext(name) != SourceExt {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if (gi != nil && gi.MatchesPath(rel)) || ex.MatchesPath(rel) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
