// Package cli provides the command-line interface for vercheck.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mrz1836/vercheck/internal/config"
	"github.com/mrz1836/vercheck/internal/verify"
)

// toolEntry describes one verifiable tool and how its comparator resolves.
type toolEntry struct {
	Name       string `json:"name"`
	Comparator string `json:"comparator"`
}

// AddListCommand adds the list command to the root command.
func AddListCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List verifiable tools",
		Long: `Display every tool vercheck knows how to verify: tools with a
registered comparator and tools with a comparison config file.

Examples:
  vercheck list
  vercheck list --output json`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd, os.Stdout)
		},
	}
	parent.AddCommand(cmd)
}

// runList executes the list command.
func runList(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	loader := config.NewToolConfigLoader(cfg.Paths.ConfigDirs, logger)

	entries := make(map[string]string)
	for _, name := range verify.DefaultRegistry().Tools() {
		entries[name] = "registered"
	}
	for _, name := range loader.ListConfiguredTools() {
		if _, ok := entries[name]; !ok {
			entries[name] = "config"
		}
	}

	tools := make([]toolEntry, 0, len(entries))
	for name, kind := range entries {
		tools = append(tools, toolEntry{Name: name, Comparator: kind})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	output := cmd.Flag("output").Value.String()
	if output == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tools)
	}

	if len(tools) == 0 {
		_, _ = fmt.Fprintln(w, "no verifiable tools found")
		return nil
	}
	_, _ = fmt.Fprintln(w, "available tools:")
	for _, t := range tools {
		_, _ = fmt.Fprintf(w, "  %-16s (%s comparator)\n", t.Name, t.Comparator)
	}
	return nil
}
