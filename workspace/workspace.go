// Package workspace is the host side of scanning: it reads documents,
// enumerates candidate files, applies the path allowlist and optionally
// asks the build graph which sources exist.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/roveo/codejump/scanner"
)

// ReadError reports a document that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Workspace is a project tree. Every path it accepts or returns is
// slash-separated and relative to the root.
type Workspace struct {
	root   string // absolute directory, empty for in-memory trees
	fsys   fs.FS
	logger *slog.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger used for skipped files and fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) { w.logger = l }
}

// WithFS replaces the backing file system. The root stays as given and is
// used only for external tools and absolute path conversion.
func WithFS(fsys fs.FS) Option {
	return func(w *Workspace) { w.fsys = fsys }
}

// New opens the workspace rooted at dir.
func New(dir string, opts ...Option) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}

	w := &Workspace{root: abs, fsys: os.DirFS(abs), logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// NewFS builds a workspace over an arbitrary file system.
func NewFS(fsys fs.FS, opts ...Option) *Workspace {
	w := &Workspace{fsys: fsys, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the absolute root directory, or "" for in-memory trees.
func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) Logger() *slog.Logger {
	return w.logger
}

// Rel converts p to a workspace-relative slash path. Absolute paths
// outside the root are rejected.
func (w *Workspace) Rel(p string) (string, error) {
	if filepath.IsAbs(p) {
		if w.root == "" {
			return "", fmt.Errorf("absolute path %s in an in-memory workspace", p)
		}
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return "", fmt.Errorf("failed to relativize %s: %w", p, err)
		}
		p = rel
	}
	p = path.Clean(filepath.ToSlash(p))
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("path %s is outside the workspace", p)
	}
	return p, nil
}

// Abs returns the absolute OS path for a workspace-relative path.
func (w *Workspace) Abs(rel string) string {
	if w.root == "" {
		return rel
	}
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// ReadFile returns a document's content.
func (w *Workspace) ReadFile(ctx context.Context, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(w.fsys, file)
	if err != nil {
		return nil, &ReadError{Path: file, Err: err}
	}
	return data, nil
}

// ReadLines returns a document split into lines.
func (w *Workspace) ReadLines(ctx context.Context, file string) ([]string, error) {
	data, err := w.ReadFile(ctx, file)
	if err != nil {
		return nil, err
	}
	return scanner.SplitLines(string(data)), nil
}

// Exists reports whether file exists in the workspace.
func (w *Workspace) Exists(file string) bool {
	_, err := fs.Stat(w.fsys, file)
	return err == nil
}
