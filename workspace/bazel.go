package workspace

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path"
	"regexp"
	"slices"
	"strings"
)

// Workspace marker files that enable build-graph queries.
var bazelMarkers = []string{"WORKSPACE", "WORKSPACE.bazel", "MODULE.bazel"}

// Rule sets a language needs before its sources can be queried.
var bazelRules = map[string]string{
	"go": "@io_bazel_rules_go//go:def.bzl",
}

const bazelSourceQuery = "kind(source, deps(//...))"

// CommandRunner runs an external command in dir and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Bazel enumerates sources through "bazel query". Every failure is
// reported as an error so the caller can fall back to globbing.
type Bazel struct {
	Binary string // defaults to "bazel"
	Runner CommandRunner
}

// Detect reports whether the workspace carries a Bazel marker file.
func (b *Bazel) Detect(w *Workspace) bool {
	return slices.ContainsFunc(bazelMarkers, w.Exists)
}

// Sources returns the workspace-relative source files of the build graph
// whose extension is one of exts.
func (b *Bazel) Sources(ctx context.Context, w *Workspace, language string, exts []string) ([]string, error) {
	if w.Root() == "" {
		return nil, fmt.Errorf("bazel needs an on-disk workspace")
	}
	if !b.Detect(w) {
		return nil, fmt.Errorf("no bazel workspace marker in %s", w.Root())
	}

	bin := b.Binary
	if bin == "" {
		bin = "bazel"
	}
	runner := b.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	if rule, ok := bazelRules[language]; ok {
		if _, err := runner.Run(ctx, w.Root(), bin, "query", rule); err != nil {
			return nil, fmt.Errorf("%s rules not configured: %w", language, err)
		}
	}

	out, err := runner.Run(ctx, w.Root(), bin, "query", bazelSourceQuery, "--output=build")
	if err != nil {
		return nil, fmt.Errorf("bazel source query failed: %w", err)
	}

	var files []string
	seen := make(map[string]bool)
	for _, p := range ParseBazelSources(out, exts) {
		if seen[p] || !w.Exists(p) {
			continue
		}
		seen[p] = true
		files = append(files, p)
	}
	return files, nil
}

var quoted = regexp.MustCompile(`"([^"]+)"`)

// ParseBazelSources extracts quoted source paths with one of exts from
// "bazel query --output=build" output. Labels such as "//pkg/a:b.go" are
// converted to workspace paths ("pkg/a/b.go").
func ParseBazelSources(out []byte, exts []string) []string {
	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		for _, m := range quoted.FindAllStringSubmatch(line, -1) {
			p := m[1]
			if !slices.Contains(exts, path.Ext(p)) {
				continue
			}
			// external repositories live outside the workspace
			if strings.HasPrefix(p, "@") && !strings.HasPrefix(p, "@//") {
				continue
			}
			files = append(files, labelToPath(p))
		}
	}
	return files
}

func labelToPath(label string) string {
	label = strings.TrimPrefix(label, "@")
	label = strings.TrimPrefix(label, "//")
	label = strings.Replace(label, ":", "/", 1)
	return path.Clean(strings.TrimPrefix(label, "/"))
}
