// Package main provides the entry point for the oceanstat CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidewater-labs/oceanstat/cmd/oceanstat/commands"
	"github.com/tidewater-labs/oceanstat/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "oceanstat",
		Short: "Oceanstat - ocean model diagnostics",
		Long: `Oceanstat computes diagnostics from MOM6 history output.

Commands:
  run       Compute diagnostics and write NetCDF products
  render    Render stored diagnostics as multi-page HTML
  validate  Validate a config file against the configuration schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "oceanstat %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
