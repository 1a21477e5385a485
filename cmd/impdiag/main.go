// Command impdiag summarizes impmock diagnostics reports.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/toejough/impmock/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(afero.NewOsFs()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
