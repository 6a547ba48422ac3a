// Package finder answers the two navigation questions across the
// candidate file set: which types implement an interface, and which
// interfaces a type or method belongs to.
package finder

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/roveo/codejump/cache"
	"github.com/roveo/codejump/conformance"
	"github.com/roveo/codejump/languages"
	"github.com/roveo/codejump/scanner"
	"github.com/roveo/codejump/workspace"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel file reads.
const DefaultConcurrency = 8

// SnapshotKey is the cache key of a language's snapshot.
func SnapshotKey(lang string) string {
	return "snapshot:" + lang
}

// Options configures a Finder.
type Options struct {
	Concurrency int
	// SyntaxAware blanks comment and string lines with tree-sitter before
	// the rules run.
	SyntaxAware bool
	// StrictSignatures makes reverse lookups compare member signatures.
	StrictSignatures bool
	// Cache, when set, holds snapshots under SnapshotKey behind the scan
	// cooldown.
	Cache  *cache.Cache
	Logger *slog.Logger
}

type memoEntry struct {
	hash uint64
	scan *scanner.FileScan
}

// Finder scans candidate files. Per-file scans are memoized by content
// hash, so unchanged files are not rescanned between snapshots.
type Finder struct {
	sources     *workspace.Sources
	concurrency int
	syntaxAware bool
	reverse     conformance.Resolver
	cache       *cache.Cache
	logger      *slog.Logger

	mu   sync.Mutex
	memo map[string]memoEntry
}

// New creates a Finder over sources.
func New(sources *workspace.Sources, opts Options) *Finder {
	f := &Finder{
		sources:     sources,
		concurrency: opts.Concurrency,
		syntaxAware: opts.SyntaxAware,
		reverse:     conformance.Resolver{StrictSignatures: opts.StrictSignatures},
		cache:       opts.Cache,
		logger:      opts.Logger,
		memo:        make(map[string]memoEntry),
	}
	if f.concurrency <= 0 {
		f.concurrency = DefaultConcurrency
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Sources returns the candidate enumerator.
func (f *Finder) Sources() *workspace.Sources {
	return f.sources
}

// Resolver returns the resolver used for reverse lookups.
func (f *Finder) Resolver() conformance.Resolver {
	return f.reverse
}

// Scan scans content of file with lang, reusing the memoized scan when the
// content hash is unchanged.
func (f *Finder) Scan(ctx context.Context, lang languages.Language, file string, content []byte) *scanner.FileScan {
	hash := xxhash.Sum64(content)

	f.mu.Lock()
	e, ok := f.memo[file]
	f.mu.Unlock()
	if ok && e.hash == hash {
		return e.scan
	}

	lines := scanner.SplitLines(string(content))
	if f.syntaxAware {
		mask, err := languages.MaskedLines(ctx, lang, content)
		if err != nil {
			f.logger.Debug("syntax masking failed, scanning raw lines", "file", file, "error", err)
		}
		lines = scanner.MaskLines(lines, mask)
	}
	scan := scanner.ScanFile(lines, lang)

	f.mu.Lock()
	f.memo[file] = memoEntry{hash: hash, scan: scan}
	f.mu.Unlock()
	return scan
}

// Document reads and scans one workspace file.
func (f *Finder) Document(ctx context.Context, file string) (*scanner.FileScan, languages.Language, error) {
	lang := languages.GetLanguageForFile(file)
	if lang == nil {
		return nil, nil, nil
	}
	content, err := f.sources.Workspace().ReadFile(ctx, file)
	if err != nil {
		return nil, lang, err
	}
	return f.Scan(ctx, lang, file, content), lang, nil
}

// load reads and scans files with bounded concurrency. Unreadable files
// are logged and left out; the result keeps the order of files.
func (f *Finder) load(ctx context.Context, lang languages.Language, files []string) ([]conformance.File, error) {
	results := make([]*scanner.FileScan, len(files))
	ws := f.sources.Workspace()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := ws.ReadFile(gctx, file)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				f.logger.Warn("skipping unreadable file", "file", file, "error", err)
				return nil
			}
			results[i] = f.Scan(gctx, lang, file, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]conformance.File, 0, len(files))
	for i, scan := range results {
		if scan != nil {
			out = append(out, conformance.File{Path: files[i], Scan: scan})
		}
	}
	return out, nil
}

// BuildCatalog scans files and returns their interface catalog. A
// cancelled build returns an empty catalog.
func (f *Finder) BuildCatalog(ctx context.Context, files []string, lang languages.Language) *conformance.Catalog {
	loaded, err := f.load(ctx, lang, files)
	if err != nil {
		return conformance.NewCatalog(nil)
	}
	return conformance.NewCatalog(loaded)
}

// Snapshot scans every candidate file of lang. A cancelled scan returns an
// empty snapshot and no error.
func (f *Finder) Snapshot(ctx context.Context, lang languages.Language) (*Snapshot, error) {
	if lang == nil {
		return newSnapshot(nil, nil), nil
	}
	if f.cache == nil {
		return f.scanAll(ctx, lang)
	}
	return cache.Fetch(ctx, f.cache, SnapshotKey(lang.Name()), func(ctx context.Context) (*Snapshot, error) {
		return f.scanAll(ctx, lang)
	})
}

func (f *Finder) scanAll(ctx context.Context, lang languages.Language) (*Snapshot, error) {
	files, err := f.sources.Candidates(ctx, lang)
	if err != nil {
		if ctx.Err() != nil {
			return newSnapshot(lang, nil), nil
		}
		return nil, err
	}

	loaded, err := f.load(ctx, lang, files)
	if err != nil {
		if ctx.Err() != nil {
			return newSnapshot(lang, nil), nil
		}
		return nil, err
	}
	f.prune(lang, files)

	f.logger.Debug("scanned candidate files", "language", lang.Name(), "files", len(loaded))
	return newSnapshot(lang, loaded), nil
}

// prune drops memoized scans of lang's files that are no longer candidates.
func (f *Finder) prune(lang languages.Language, files []string) {
	keep := make(map[string]bool, len(files))
	for _, file := range files {
		keep[file] = true
	}
	exts := lang.Extensions()

	f.mu.Lock()
	defer f.mu.Unlock()
	for file := range f.memo {
		if !keep[file] && slices.Contains(exts, path.Ext(file)) {
			delete(f.memo, file)
		}
	}
}

// FindImplementations resolves the line at pos in file.
//
// On an interface declaration it returns the declaration of every
// concrete type that satisfies the interface. On an interface member it
// returns every owned method of that name, without checking conformance.
// Anything else yields nothing.
func (f *Finder) FindImplementations(ctx context.Context, file string, pos languages.Position) ([]languages.Location, error) {
	if ctx.Err() != nil {
		return nil, nil
	}
	scan, lang, err := f.Document(ctx, file)
	if err != nil || scan == nil {
		return nil, err
	}

	var (
		iface  *conformance.Interface
		member string
	)
	if b := scan.InterfaceAt(pos.Line); b != nil {
		iface = conformance.NewInterface(file, b)
	} else if _, m := scan.InterfaceMemberAt(pos.Line); m != nil {
		member = m.Name
	} else {
		return nil, nil
	}

	snap, err := f.Snapshot(ctx, lang)
	if err != nil || ctx.Err() != nil {
		return nil, err
	}
	if iface != nil {
		return snap.Implementations(iface), nil
	}
	return snap.MethodsNamed(member), nil
}

// FindInterfaces resolves the line in file.
//
// On a concrete type declaration it returns the interfaces the type
// satisfies. On an owned method it returns every interface with a member
// of that name, whether or not the owner satisfies it.
func (f *Finder) FindInterfaces(ctx context.Context, file string, line int) ([]InterfaceMatch, error) {
	if ctx.Err() != nil {
		return nil, nil
	}
	scan, lang, err := f.Document(ctx, file)
	if err != nil || scan == nil {
		return nil, err
	}

	t := scan.TypeAt(line)
	m := scan.MethodAt(line)
	if t == nil && m == nil {
		return nil, nil
	}

	snap, err := f.Snapshot(ctx, lang)
	if err != nil || ctx.Err() != nil {
		return nil, err
	}
	if t == nil {
		return snap.InterfacesWithMember(m.Name), nil
	}

	return snap.InterfacesOf(TypeAt(snap, file, scan, line), f.reverse), nil
}

// TypeAt returns the concrete type declared at file:line. When file is not
// part of snap, the type is built from the file's own scan.
func TypeAt(snap *Snapshot, file string, scan *scanner.FileScan, line int) *conformance.ConcreteType {
	if ct := snap.TypeAt(file, line); ct != nil {
		return ct
	}
	for _, ct := range conformance.ConcreteTypes([]conformance.File{{Path: file, Scan: scan}}) {
		if ct.Location.Position.Line == line {
			return ct
		}
	}
	return nil
}
