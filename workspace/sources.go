package workspace

import (
	"context"
	"sync/atomic"

	"github.com/roveo/codejump/languages"
)

// Sources produces the candidate file set of a language: the build graph
// when one answers, globbing otherwise, always filtered by the allowlist
// and capped.
type Sources struct {
	ws       *Workspace
	allow    atomic.Pointer[Allowlist]
	exclude  []string
	maxFiles int
	bazel    *Bazel
}

// SourcesOption configures Sources.
type SourcesOption func(*Sources)

// WithExclude replaces DefaultExclude.
func WithExclude(patterns []string) SourcesOption {
	return func(s *Sources) { s.exclude = patterns }
}

// WithMaxFiles caps the candidate set.
func WithMaxFiles(n int) SourcesOption {
	return func(s *Sources) { s.maxFiles = n }
}

// WithBazel enables build-graph queries. A nil Bazel disables them.
func WithBazel(b *Bazel) SourcesOption {
	return func(s *Sources) { s.bazel = b }
}

// NewSources builds the candidate enumerator of ws.
func NewSources(ws *Workspace, allow *Allowlist, opts ...SourcesOption) *Sources {
	s := &Sources{ws: ws, exclude: DefaultExclude, maxFiles: DefaultMaxFiles}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxFiles <= 0 {
		s.maxFiles = DefaultMaxFiles
	}
	if allow == nil {
		allow = &Allowlist{}
	}
	s.allow.Store(allow)
	return s
}

func (s *Sources) Workspace() *Workspace {
	return s.ws
}

// Allowed reports whether the relative path passes the allowlist.
func (s *Sources) Allowed(rel string) bool {
	return s.allow.Load().Allowed(rel)
}

// Allowlist returns the allowlist currently in effect.
func (s *Sources) Allowlist() *Allowlist {
	return s.allow.Load()
}

// SetAllowlist swaps the allowlist and reports whether it changed.
func (s *Sources) SetAllowlist(a *Allowlist) bool {
	if a == nil {
		a = &Allowlist{}
	}
	old := s.allow.Swap(a)
	return !old.Equal(a)
}

// Candidates returns the allowed files of lang in enumeration order.
// Build-graph failures are logged and fall back to globbing.
func (s *Sources) Candidates(ctx context.Context, lang languages.Language) ([]string, error) {
	if lang == nil {
		return nil, nil
	}
	logger := s.ws.Logger()

	if s.bazel != nil && s.ws.Root() != "" && s.bazel.Detect(s.ws) {
		files, err := s.bazel.Sources(ctx, s.ws, lang.Name(), lang.Extensions())
		switch {
		case err != nil:
			logger.Debug("build graph query failed, falling back to glob", "language", lang.Name(), "error", err)
		case len(files) == 0:
			logger.Debug("build graph returned no sources, falling back to glob", "language", lang.Name())
		default:
			var out []string
			for _, f := range files {
				if s.Allowed(f) && !matchAny(s.exclude, f) {
					out = append(out, f)
				}
				if len(out) >= s.maxFiles {
					break
				}
			}
			return out, nil
		}
	}

	return s.ws.find(ctx, ExtensionGlobs(lang.Extensions()), s.exclude, s.maxFiles, s.Allowed)
}
