// Package cli provides the command-line interface for vercheck.
package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/vercheck/internal/config"
	"github.com/mrz1836/vercheck/internal/errors"
	"github.com/mrz1836/vercheck/internal/report"
	"github.com/mrz1836/vercheck/internal/runner"
	"github.com/mrz1836/vercheck/internal/verify"
)

// Fallback versions used in run-all mode when none are given.
const (
	defaultOldVersion = "1.0.0"
	defaultNewVersion = "2.0.0"
)

// runFlags holds the run command's flags.
type runFlags struct {
	oldVersion string
	newVersion string
	csvReport  string
	htmlReport string
	noReport   bool
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(parent *cobra.Command) {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [tool]",
		Short: "Run and verify a tool version upgrade",
		Long: `Execute the old and new versions of a tool, compare their artifacts
and logs, and write the verification report.

Without a tool argument every known tool is verified: tools with a
registered comparator plus tools with a comparison config file.

Examples:
  vercheck run sampletool --old-version 1.0.0 --new-version 2.0.0
  vercheck run                        # verify all known tools
  vercheck run demotool --no-report   # skip report files`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := ""
			if len(args) > 0 {
				tool = args[0]
			}
			return runVerification(cmd.Context(), cmd, os.Stdout, tool, flags)
		},
	}

	cmd.Flags().StringVar(&flags.oldVersion, "old-version", defaultOldVersion, "old tool version")
	cmd.Flags().StringVar(&flags.newVersion, "new-version", defaultNewVersion, "new tool version")
	cmd.Flags().StringVar(&flags.csvReport, "csv-report", "", "CSV report path (overrides config)")
	cmd.Flags().StringVar(&flags.htmlReport, "html-report", "", "HTML report path (overrides config)")
	cmd.Flags().BoolVar(&flags.noReport, "no-report", false, "disable report generation")

	parent.AddCommand(cmd)
}

// runSummary is the per-tool result line shown to the user.
type runSummary struct {
	Tool       string `json:"tool"`
	OldVersion string `json:"old_version"`
	NewVersion string `json:"new_version"`
	Status     string `json:"status"`
	Memo       string `json:"memo"`
}

// runVerification executes the run command: it verifies one named tool or
// every known tool, writes the reports, and prints the per-tool summaries.
func runVerification(ctx context.Context, cmd *cobra.Command, w io.Writer, tool string, flags *runFlags) error {
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
	applyReportFlags(cfg, flags)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	loader := config.NewToolConfigLoader(cfg.Paths.ConfigDirs, logger)
	resolver := verify.NewResolver(verify.DefaultRegistry(), loader, logger)
	engine := verify.NewEngine(resolver, verify.NewAggregator(verify.NewItemTemplates(), nil), logger)
	toolRunner := runner.New(cfg, nil, nil, logger)

	tools, err := selectTools(tool, loader)
	if err != nil {
		return err
	}
	logger.Info().Strs("tools", tools).Msg("starting verification")

	reportPath := ""
	if !cfg.Report.Disabled {
		reportPath = cfg.Report.CSVPath
	}

	rep := report.New(time.Now())
	for _, name := range tools {
		run, err := verifyTool(ctx, name, flags, cfg, loader, toolRunner, engine, reportPath, logger)
		if err != nil {
			return err
		}
		rep.Add(run)
	}

	if !cfg.Report.Disabled {
		if err := rep.WriteCSV(cfg.Report.CSVPath); err != nil {
			return err
		}
		if err := rep.WriteHTML(cfg.Report.HTMLPath); err != nil {
			return err
		}
		logger.Info().Str("csv", cfg.Report.CSVPath).Str("html", cfg.Report.HTMLPath).
			Msg("reports written")
	}

	output := cmd.Flag("output").Value.String()
	return printSummaries(w, output, rep.Runs())
}

// verifyTool runs and verifies a single tool.
func verifyTool(ctx context.Context, name string, flags *runFlags, cfg *config.Config,
	loader *config.ToolConfigLoader, toolRunner *runner.Runner, engine *verify.Engine,
	reportPath string, logger zerolog.Logger) (report.ToolRun, error) {

	toolCfg := loadOptionalToolConfig(loader, name, logger)

	res, err := toolRunner.Run(ctx, name, flags.oldVersion, flags.newVersion, toolCfg)
	if err != nil {
		return report.ToolRun{}, err
	}

	items := engine.Verify(verify.RunInput{
		Tool:        name,
		OldVersion:  res.OldVersion,
		NewVersion:  res.NewVersion,
		OldArtifact: res.OldArtifact,
		NewArtifact: res.NewArtifact,
		OldLog:      res.OldLog,
		NewLog:      res.NewLog,
		Executions:  res.Executions,
		Evidence: verify.Evidence{
			OldArtifact: res.OldArtifact,
			NewArtifact: res.NewArtifact,
			RunLog:      res.NewLog,
			ReportPath:  reportPath,
		},
	})

	return report.ToolRun{
		RunID:      res.RunID,
		Tool:       name,
		OldVersion: res.OldVersion,
		NewVersion: res.NewVersion,
		Items:      items,
	}, nil
}

// loadOptionalToolConfig loads the per-tool comparison config when one
// exists. A missing file is the normal case for registered tools; an
// unparseable file is logged and treated the same, so a single bad config
// never aborts a run and the resolver degrades to the next comparator tier.
func loadOptionalToolConfig(loader *config.ToolConfigLoader, name string, logger zerolog.Logger) *config.ComparisonConfig {
	toolCfg, err := loader.LoadToolConfig(name)
	if err == nil {
		return toolCfg
	}
	if !stderrors.Is(err, errors.ErrConfigNotFound) {
		logger.Warn().Err(err).Str("tool", name).
			Msg("comparison config unusable, continuing without it")
	}
	return nil
}

// selectTools picks the tool list for this run: the named tool, or every
// known tool (registered comparators plus configured tools) when none is
// named.
func selectTools(tool string, loader *config.ToolConfigLoader) ([]string, error) {
	if tool != "" {
		return []string{tool}, nil
	}

	seen := make(map[string]struct{})
	var tools []string
	for _, name := range verify.DefaultRegistry().Tools() {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			tools = append(tools, name)
		}
	}
	for _, name := range loader.ListConfiguredTools() {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			tools = append(tools, name)
		}
	}
	if len(tools) == 0 {
		return nil, errors.Wrap(errors.ErrNoTools, "no registered comparators and no config files found")
	}

	sort.Strings(tools)
	return tools, nil
}

// applyReportFlags folds the run command's report flags into the config.
func applyReportFlags(cfg *config.Config, flags *runFlags) {
	if flags.noReport {
		cfg.Report.Disabled = true
	}
	if flags.csvReport != "" {
		cfg.Report.CSVPath = flags.csvReport
	}
	if flags.htmlReport != "" {
		cfg.Report.HTMLPath = flags.htmlReport
	}
}

// printSummaries renders the per-tool summary lines plus totals, and returns
// an error when any tool's verification did not succeed so the process exits
// non-zero.
func printSummaries(w io.Writer, output string, runs []report.ToolRun) error {
	summaries := make([]runSummary, 0, len(runs))
	var failed, errored int
	for _, run := range runs {
		s := run.Summary()
		switch s.Status {
		case verify.StatusFailed:
			failed++
		case verify.StatusError:
			errored++
		}
		summaries = append(summaries, runSummary{
			Tool:       run.Tool,
			OldVersion: run.OldVersion,
			NewVersion: run.NewVersion,
			Status:     string(s.Status),
			Memo:       s.Memo,
		})
	}

	if output == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summaries); err != nil {
			return err
		}
	} else {
		for _, s := range summaries {
			_, _ = fmt.Fprintf(w, "%-16s %s -> %s  %-7s %s\n",
				s.Tool, s.OldVersion, s.NewVersion, s.Status, s.Memo)
		}
		_, _ = fmt.Fprintf(w, "\ntotal: %d, success: %d, failed: %d, error: %d\n",
			len(summaries), len(summaries)-failed-errored, failed, errored)
	}

	if failed > 0 || errored > 0 {
		return fmt.Errorf("verification not clean: %d failed, %d error",
			failed, errored)
	}
	return nil
}
