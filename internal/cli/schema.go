package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/toejough/impmock/report"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [output-file]",
		Short: "Print the JSON schema of diagnostics reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := report.Schema()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

				return err
			}

			if err := afero.WriteFile(rootOpts.Fs, args[0], data, 0o644); err != nil { //nolint:mnd // standard file perms
				return fmt.Errorf("error writing file: %w", err)
			}

			return nil
		},
	}
}
