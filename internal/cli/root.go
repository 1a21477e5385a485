// Package cli implements the impdiag command, which summarizes diagnostics
// reports written by tests using impmock.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/toejough/impmock/report"
)

// RootOptions holds global flags and the state shared by all commands.
type RootOptions struct {
	Fs         afero.Fs
	Verbose    bool
	Format     string
	ConfigPath string

	config Config
	logger *slog.Logger
}

// NewRootCommand creates the impdiag root command operating on fsys.
func NewRootCommand(fsys afero.Fs) *cobra.Command {
	opts := &RootOptions{Fs: fsys}

	cmd := &cobra.Command{
		Use:   "impdiag",
		Short: "Summarize impmock diagnostics reports",
		Long: `impdiag reads the diagnostics reports written by tests using impmock and
summarizes setup coverage and unmatched calls across them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.prepare(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", string(report.FormatText), "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+ConfigFilename+")")

	cmd.AddCommand(NewSummarizeCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// outputFormat is the validated output format.
func (o *RootOptions) outputFormat() report.Format {
	format, _ := report.ParseFormat(o.Format)

	return format
}

// prepare loads the config, lets flags override it, and sets up logging.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}

	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path, required := o.ConfigPath, true
	if path == "" {
		path, required = ConfigFilename, false
	}

	cfg, err := LoadConfig(o.Fs, path, required)
	if err != nil {
		return err
	}

	o.config = cfg
	o.logger.Debug("config loaded", slog.String("path", path))

	if cfg.Format != "" && !cmd.Flags().Changed("format") {
		o.Format = cfg.Format
	}

	if _, err := report.ParseFormat(o.Format); err != nil {
		return fmt.Errorf("invalid --format: %w", err)
	}

	return nil
}
