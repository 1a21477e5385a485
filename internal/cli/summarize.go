package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/toejough/impmock/report"
)

// Exported variables.
var (
	ErrNoReports = errors.New("no reports found")
)

// SummarizeOptions holds the summarize flags.
type SummarizeOptions struct {
	FailOnUnused    bool
	FailOnUnmatched bool
	Details         bool
}

// NewSummarizeCommand creates the summarize command.
func NewSummarizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize <report-or-dir>...",
		Short: "Total setup coverage across diagnostics reports",
		Long: `Read diagnostics reports (.json, .yaml, .yml) and print a summary of setup
coverage and unmatched calls. Directories are searched recursively.

Exits non-zero when --fail-on-unused or --fail-on-unmatched (or the matching
config settings) reject the findings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.FailOnUnused, "fail-on-unused", false, "fail when any setup was never invoked")
	cmd.Flags().BoolVar(&opts.FailOnUnmatched, "fail-on-unmatched", false, "fail when any call matched no setup")
	cmd.Flags().BoolVar(&opts.Details, "details", false, "print every report before the summary (text format only)")

	return cmd
}

func runSummarize(cmd *cobra.Command, rootOpts *RootOptions, opts *SummarizeOptions, args []string) error {
	paths, err := findReports(rootOpts.Fs, args)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		return fmt.Errorf("%w in %v", ErrNoReports, args)
	}

	format := rootOpts.outputFormat()
	reports := make([]report.Report, 0, len(paths))

	for _, path := range paths {
		loaded, err := report.ReadFile(rootOpts.Fs, path)
		if err != nil {
			return err
		}

		rootOpts.logger.Debug("report loaded", slog.String("path", path), slog.Int("mocks", len(loaded.Mocks)))

		if opts.Details && format == report.FormatText {
			if err := report.Encode(cmd.OutOrStdout(), loaded, report.FormatText); err != nil {
				return err
			}
		}

		reports = append(reports, loaded)
	}

	summary := report.Summarize(reports...)
	if err := summary.Encode(cmd.OutOrStdout(), format); err != nil {
		return err
	}

	policy := report.Policy{
		FailOnUnusedSetups:   rootOpts.config.FailOnUnusedSetups,
		FailOnUnmatchedCalls: rootOpts.config.FailOnUnmatchedCalls,
	}

	if cmd.Flags().Changed("fail-on-unused") {
		policy.FailOnUnusedSetups = opts.FailOnUnused
	}

	if cmd.Flags().Changed("fail-on-unmatched") {
		policy.FailOnUnmatchedCalls = opts.FailOnUnmatched
	}

	return summary.Check(policy)
}

// findReports expands args into report files. Directories are walked for files
// with a report extension; files are taken as given.
func findReports(fsys afero.Fs, args []string) ([]string, error) {
	paths := []string{}

	for _, arg := range args {
		info, err := fsys.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)

			continue
		}

		err = afero.Walk(fsys, arg, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				return nil
			}

			if _, err := report.FormatForPath(path); err == nil {
				paths = append(paths, path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", arg, err)
		}
	}

	slices.Sort(paths)

	return slices.Compact(paths), nil
}
