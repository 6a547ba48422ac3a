// Package lens turns navigation results into annotations on source lines
// and resolves the actions those annotations carry.
package lens

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roveo/codejump/cache"
	"github.com/roveo/codejump/config"
	"github.com/roveo/codejump/conformance"
	"github.com/roveo/codejump/finder"
	"github.com/roveo/codejump/languages"
	"github.com/roveo/codejump/workspace"
)

// Actions carried by annotations.
const (
	ActionGoToImplementation = "goToImplementation"
	ActionGoToInterface      = "goToInterface"
)

// ErrUnknownAction is returned by ExecuteAction for an unrecognized action.
var ErrUnknownAction = errors.New("unknown action")

// AnnotationsKey is the cache key of a file's annotations.
func AnnotationsKey(file string) string {
	return "annotations:" + file
}

// Target is the argument of an action. Locations and Interfaces, when
// set, are results computed with the annotation and are used as-is.
type Target struct {
	File       string                  `json:"file"`
	Position   languages.Position      `json:"position"`
	Name       string                  `json:"name"`
	Locations  []languages.Location    `json:"locations,omitempty"`
	Interfaces []finder.InterfaceMatch `json:"interfaces,omitempty"`
}

// Annotation is a clickable label above a source line.
type Annotation struct {
	Position languages.Position `json:"position"`
	Label    string             `json:"label"`
	Action   string             `json:"action"`
	Target   Target             `json:"target"`
}

// Navigation is the result of an action. A single target is a jump;
// several are a references list.
type Navigation struct {
	Targets []languages.Location `json:"targets"`
}

// Jump returns the only target, if there is exactly one.
func (n Navigation) Jump() (languages.Location, bool) {
	if len(n.Targets) != 1 {
		return languages.Location{}, false
	}
	return n.Targets[0], true
}

// Service owns the finder and the result cache for one workspace.
type Service struct {
	finder *finder.Finder
	cache  *cache.Cache
	logger *slog.Logger
}

// New creates a Service. A nil cache gets a default one.
func New(f *finder.Finder, c *cache.Cache, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.New(cache.Config{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{finder: f, cache: c, logger: logger}
}

func (s *Service) Finder() *finder.Finder {
	return s.finder
}

func (s *Service) Cache() *cache.Cache {
	return s.cache
}

func implementationsLabel(n int) string {
	if n == 1 {
		return "1 implementation"
	}
	return fmt.Sprintf("%d implementations", n)
}

func interfacesLabel(n int) string {
	if n == 1 {
		return "Interface"
	}
	return fmt.Sprintf("Implements %d interfaces", n)
}

// ProvideAnnotations returns the annotations of file in line order:
// interface and interface member lines get goToImplementation, conforming
// types and methods named like an interface member get goToInterface.
// Files outside the allowlist or of an unsupported language have none.
func (s *Service) ProvideAnnotations(ctx context.Context, file string) ([]Annotation, error) {
	if languages.GetLanguageForFile(file) == nil || !s.finder.Sources().Allowed(file) {
		return nil, nil
	}
	key := AnnotationsKey(file)
	if v, ok := s.cache.Get(key); ok {
		if out, ok := v.([]Annotation); ok {
			return out, nil
		}
	}

	scan, lang, err := s.finder.Document(ctx, file)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, err
	}
	snap, err := s.finder.Snapshot(ctx, lang)
	if err != nil || ctx.Err() != nil {
		return nil, err
	}

	var out []Annotation
	add := func(line, col int, name, action, label string, t Target) {
		t.File = file
		t.Position = languages.Position{Line: line, Character: col}
		t.Name = name
		out = append(out, Annotation{Position: t.Position, Label: label, Action: action, Target: t})
	}

	for i := range scan.Interfaces {
		b := &scan.Interfaces[i]
		impls := snap.Implementations(conformance.NewInterface(file, b))
		add(b.Line, b.Column, b.Name, ActionGoToImplementation, implementationsLabel(len(impls)),
			Target{Locations: impls})

		for _, m := range b.Members {
			methods := snap.MethodsNamed(m.Name)
			add(m.Line, m.Column, m.Name, ActionGoToImplementation, implementationsLabel(len(methods)),
				Target{Locations: methods})
		}
	}

	reverse := s.finder.Resolver()
	for _, t := range scan.Types {
		ifaces := snap.InterfacesOf(finder.TypeAt(snap, file, scan, t.Line), reverse)
		if len(ifaces) > 0 {
			add(t.Line, t.Column, t.Name, ActionGoToInterface, interfacesLabel(len(ifaces)),
				Target{Interfaces: ifaces})
		}
	}
	for _, m := range scan.Methods {
		ifaces := snap.InterfacesWithMember(m.Name)
		if len(ifaces) > 0 {
			add(m.Line, m.Column, m.Name, ActionGoToInterface, interfacesLabel(len(ifaces)),
				Target{Interfaces: ifaces})
		}
	}

	slices.SortStableFunc(out, func(a, b Annotation) int {
		return cmp.Compare(a.Position.Line, b.Position.Line)
	})

	if ctx.Err() != nil {
		return nil, nil
	}
	s.cache.Set(key, out)
	return out, nil
}

// ExecuteAction resolves an annotation's action to navigation targets.
func (s *Service) ExecuteAction(ctx context.Context, action string, target Target) (Navigation, error) {
	switch action {
	case ActionGoToImplementation:
		if target.Locations != nil {
			return Navigation{Targets: target.Locations}, nil
		}
		locs, err := s.finder.FindImplementations(ctx, target.File, target.Position)
		if err != nil {
			return Navigation{}, err
		}
		return Navigation{Targets: locs}, nil

	case ActionGoToInterface:
		ifaces := target.Interfaces
		if ifaces == nil {
			var err error
			ifaces, err = s.finder.FindInterfaces(ctx, target.File, target.Position.Line)
			if err != nil {
				return Navigation{}, err
			}
		}
		var locs []languages.Location
		for _, i := range ifaces {
			locs = append(locs, i.Location)
		}
		return Navigation{Targets: locs}, nil
	}
	return Navigation{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// HandleFileEvent invalidates cached results when a tracked source file
// that passes the allowlist changed. It reports whether it invalidated.
func (s *Service) HandleFileEvent(file string) bool {
	if languages.GetLanguageForFile(file) == nil || !s.finder.Sources().Allowed(file) {
		return false
	}
	s.logger.Debug("source changed, invalidating cache", "file", file)
	s.cache.InvalidateAll()
	return true
}

// HandleConfigChange applies a reloaded configuration. When the allowlist
// changed, cached results are invalidated.
func (s *Service) HandleConfigChange(cfg *config.Config) (bool, error) {
	allow, err := workspace.NewAllowlist(cfg.AllowedPaths)
	if err != nil {
		return false, err
	}
	if !s.finder.Sources().SetAllowlist(allow) {
		return false, nil
	}
	s.logger.Info("allowlist changed, invalidating cache", "patterns", cfg.AllowedPaths)
	s.cache.InvalidateAll()
	return true, nil
}
