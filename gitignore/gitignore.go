// Package gitignore provides functionality to parse and match .gitignore patterns.
package gitignore

import (
	"bufio"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher holds compiled gitignore patterns for a directory tree.
type Matcher struct {
	patterns []pattern
}

// pattern represents a single gitignore pattern with its context.
type pattern struct {
	pattern  string // The original pattern (cleaned)
	glob     string // doublestar expression matched against the base-relative path
	negation bool   // Pattern starts with !
	dirOnly  bool   // Pattern ends with /
	anchored bool   // Pattern contains / (except trailing)
	baseDir  string // Directory where the .gitignore was found (relative to root)
}

// New creates a Matcher for the tree rooted at fsys.
// It recursively loads all .gitignore files, skipping hidden directories.
func New(fsys fs.FS) (*Matcher, error) {
	m := &Matcher{}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip inaccessible paths
		}

		if d.IsDir() && p != "." && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}

		if d.Name() == ".gitignore" && !d.IsDir() {
			relDir := path.Dir(p)
			if relDir == "." {
				relDir = ""
			}
			if err := m.loadFile(fsys, p, relDir); err != nil {
				return nil // Skip unreadable .gitignore files
			}
		}

		return nil
	})

	return m, err
}

// loadFile parses a .gitignore file and adds its patterns.
func (m *Matcher) loadFile(fsys fs.FS, name string, baseDir string) error {
	file, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if p := parseLine(scanner.Text(), baseDir); p != nil {
			m.patterns = append(m.patterns, *p)
		}
	}

	return scanner.Err()
}

// parseLine parses a single line from a .gitignore file.
// Returns nil for empty lines, comments and patterns doublestar rejects.
func parseLine(line string, baseDir string) *pattern {
	// Trim trailing spaces (unless escaped)
	for len(line) > 0 && line[len(line)-1] == ' ' {
		if len(line) >= 2 && line[len(line)-2] == '\\' {
			line = line[:len(line)-2] + " "
			break
		}
		line = line[:len(line)-1]
	}

	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &pattern{baseDir: baseDir}

	if strings.HasPrefix(line, "!") {
		p.negation = true
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	// A leading / or any inner / anchors the pattern to baseDir
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		p.anchored = true
	}

	p.pattern = line
	p.glob = line
	if !p.anchored {
		p.glob = "**/" + line
	}
	if !doublestar.ValidatePattern(p.glob) {
		return nil
	}
	return p
}

// Match checks if a path should be ignored.
// The path is slash-separated and relative to the walked root.
// isDir should be true if the path is a directory.
func (m *Matcher) Match(p string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	p = strings.TrimPrefix(path.Clean(p), "./")

	// Patterns like "build/" also ignore everything below build
	parts := strings.Split(p, "/")
	for i := 1; i < len(parts); i++ {
		if m.matchPath(strings.Join(parts[:i], "/"), true) {
			return true
		}
	}

	return m.matchPath(p, isDir)
}

// Len returns the number of loaded patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// matchPath applies every pattern in order; the last match wins.
func (m *Matcher) matchPath(p string, isDir bool) bool {
	ignored := false

	for _, pat := range m.patterns {
		if pat.matches(p, isDir) {
			ignored = !pat.negation
		}
	}

	return ignored
}

// matches checks if a single pattern matches the given path.
func (p *pattern) matches(name string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}

	if p.baseDir != "" {
		if !strings.HasPrefix(name, p.baseDir+"/") {
			return false
		}
		name = strings.TrimPrefix(name, p.baseDir+"/")
	}

	ok, _ := doublestar.Match(p.glob, name)
	return ok
}
