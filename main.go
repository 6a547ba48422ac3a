package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/roveo/codejump/lens"
	"github.com/roveo/codejump/tools"
	"github.com/spf13/cobra"
)

var (
	opts      appOptions
	lineLimit int
)

var rootCmd = &cobra.Command{
	Use:   "codejump",
	Short: "Interface navigation for Go and Java",
	Long: `codejump finds the implementations of interfaces and the interfaces of types
in Go and Java code. Go types are matched by their method sets, Java classes
by their implements clause and their methods.

It runs as an MCP (Model Context Protocol) server or as a one-shot command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as MCP server (communicates via stdio)",
	Long: `Run as an MCP server that communicates via stdio.
Exposes tools: annotations, go_to_implementation, go_to_interface, interfaces.
Source and config changes under the root are watched while the server runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context(), opts, lineLimit)
	},
}

var annotateCmd = &cobra.Command{
	Use:   "annotate <file>",
	Short: "Print the navigation annotations of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnnotate(cmd.Context(), opts, args[0])
	},
}

var implCmd = &cobra.Command{
	Use:   "impl <file> <line>",
	Short: "Print the implementations of the interface or interface method at a line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid line %q: %w", args[1], err)
		}
		return runNavigate(cmd.Context(), opts, lens.ActionGoToImplementation, args[0], line)
	},
}

var ifaceCmd = &cobra.Command{
	Use:   "iface <file> <line>",
	Short: "Print the interfaces of the type or method at a line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid line %q: %w", args[1], err)
		}
		return runNavigate(cmd.Context(), opts, lens.ActionGoToInterface, args[0], line)
	},
}

var interfacesCmd = &cobra.Command{
	Use:   "interfaces [language]",
	Short: "Print the interfaces declared in the workspace",
	Long: `Print every interface declared in the workspace with its methods, line range
and implementation count, grouped by file. Limited to one language when given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		language := ""
		if len(args) > 0 {
			language = args[0]
		}
		filter, _ := cmd.Flags().GetString("filter")
		return runInterfaces(cmd.Context(), opts, language, filter, lineLimit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", ".",
		"Workspace root directory")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Config file (default <root>/.codejump.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides the config file)")
	rootCmd.PersistentFlags().IntVar(&lineLimit, "limit", tools.DefaultLineLimit,
		"Maximum lines in interfaces output (negative = no limit)")

	interfacesCmd.Flags().StringP("filter", "f", "",
		"Only show files matching this path prefix (file or directory)")

	rootCmd.AddCommand(mcpCmd, annotateCmd, implCmd, ifaceCmd, interfacesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
