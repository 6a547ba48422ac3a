package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/roveo/codejump/gitignore"
)

// DefaultMaxFiles caps a single enumeration.
const DefaultMaxFiles = 1000

// DefaultExclude is skipped by every enumeration unless overridden.
var DefaultExclude = []string{"**/node_modules/**"}

// Directories that never hold scannable sources.
var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
}

var errLimit = errors.New("file limit reached")

// Find walks the workspace in lexical order and returns files matching any
// include pattern and no exclude pattern, up to limit files. Hidden
// directories, vendored trees and gitignored paths are skipped. A limit of
// zero or less means DefaultMaxFiles.
func (w *Workspace) Find(ctx context.Context, include, exclude []string, limit int) ([]string, error) {
	return w.find(ctx, include, exclude, limit, nil)
}

// find is Find with an extra filter; rejected files do not count
// towards limit.
func (w *Workspace) find(ctx context.Context, include, exclude []string, limit int, keep func(string) bool) ([]string, error) {
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	if limit <= 0 {
		limit = DefaultMaxFiles
	}

	ignore, err := gitignore.New(w.fsys)
	if err != nil {
		w.logger.Debug("failed to load gitignore files", "error", err)
	}

	var files []string
	err = fs.WalkDir(w.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == "." {
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || skipDirs[name] || strings.HasPrefix(name, "bazel-") {
				return fs.SkipDir
			}
			if ignore.Match(p, true) {
				return fs.SkipDir
			}
			return nil
		}

		if !matchAny(include, p) || matchAny(exclude, p) || ignore.Match(p, false) {
			return nil
		}
		if keep != nil && !keep(p) {
			return nil
		}
		files = append(files, p)
		if len(files) >= limit {
			return errLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return nil, err
	}
	return files, nil
}

func matchAny(patterns []string, p string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, p); ok {
			return true
		}
	}
	return false
}

// ExtensionGlobs returns one "**/*<ext>" include pattern per extension.
func ExtensionGlobs(exts []string) []string {
	globs := make([]string, len(exts))
	for i, ext := range exts {
		globs[i] = "**/*" + ext
	}
	return globs
}
