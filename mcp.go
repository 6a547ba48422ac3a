package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roveo/codejump/languages"
	"github.com/roveo/codejump/lens"
	"github.com/roveo/codejump/tools"
)

func runMCPServer(ctx context.Context, opts appOptions, lineLimit int) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	stop, err := a.run(ctx)
	if err != nil {
		return err
	}
	defer stop()

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "codejump",
		Version: "1.0.0",
	}, nil)

	tools.Register(s, &tools.Config{
		Service:   a.service,
		LineLimit: lineLimit,
	})

	a.logger.Info("serving MCP over stdio", "root", a.ws.Root(), "languages", languages.RegisteredLanguages())
	return s.Run(ctx, &mcp.StdioTransport{})
}

func runAnnotate(ctx context.Context, opts appOptions, file string) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	rel, err := a.ws.Rel(file)
	if err != nil {
		return err
	}
	annotations, err := a.service.ProvideAnnotations(ctx, rel)
	if err != nil {
		return err
	}
	for _, an := range annotations {
		fmt.Printf("%s:%d:%d: %s [%s]\n", rel, an.Position.Line+1, an.Position.Character+1, an.Label, an.Action)
	}
	return nil
}

// runNavigate prints the targets of action at file:line (1-based).
func runNavigate(ctx context.Context, opts appOptions, action, file string, line int) error {
	if line < 1 {
		return fmt.Errorf("line must be 1 or greater, got %d", line)
	}
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	rel, err := a.ws.Rel(file)
	if err != nil {
		return err
	}
	nav, err := a.service.ExecuteAction(ctx, action, lens.Target{
		File:     rel,
		Position: languages.Position{Line: line - 1},
	})
	if err != nil {
		return err
	}
	if len(nav.Targets) == 0 {
		fmt.Fprintf(os.Stderr, "no results for %s:%d\n", rel, line)
		return nil
	}
	for _, t := range nav.Targets {
		fmt.Printf("%s:%d:%d\n", t.File, t.Position.Line+1, t.Position.Character+1)
	}
	return nil
}

func runInterfaces(ctx context.Context, opts appOptions, language, filter string, lineLimit int) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	output, err := tools.Codemap(ctx, a.service.Finder(), language, tools.FormatOptions{
		Filter:    filter,
		LineLimit: lineLimit,
	})
	if err != nil {
		return err
	}
	if output == "" {
		output = "No interfaces found.\n"
	}
	fmt.Print(output)
	return nil
}
