package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tidewater-labs/oceanstat/internal/config"
)

// exitCodeValidationFailure is the exit code when the file cannot be
// checked at all.
const exitCodeValidationFailure = 2

// ErrConfigInvalid is returned when the config file violates the schema.
var ErrConfigInvalid = errors.New("config file is invalid")

// NewValidateCommand creates the validate subcommand.
func NewValidateCommand() *cobra.Command {
	var nocolor bool

	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a config file against the configuration schema",
		Long: `Validate a YAML config file against the embedded configuration schema.

Examples:
  oceanstat validate .oceanstat.yaml
  oceanstat validate --no-color run/config.yaml
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateConfig(cmd.OutOrStdout(), args[0], nocolor)
		},
	}

	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func runValidateConfig(out io.Writer, path string, nocolor bool) error {
	if nocolor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	issues, err := config.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to validate %s: %v\n", path, err)
		os.Exit(exitCodeValidationFailure)
	}

	if len(issues) == 0 {
		color.New(color.FgGreen).Fprintf(out, "Config is valid (%s)\n", path)

		return nil
	}

	color.New(color.FgRed).Fprintf(out, "Config validation failed (%s)\n", path)
	fmt.Fprintf(out, "\nIssues:\n")

	for _, issue := range issues {
		color.New(color.FgRed).Fprintf(out, "  - %s\n", issue)
	}

	return fmt.Errorf("%w: %d issue(s)", ErrConfigInvalid, len(issues))
}
