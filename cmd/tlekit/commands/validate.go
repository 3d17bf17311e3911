package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/star/tlekit/internal/tle"
)

func newValidateCommand() *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a TLE without assembling a record",
		Long: `Run the structural, checksum, cross-field and range checks on a
2- or 3-line TLE and print the diagnostics as JSON. No record is
assembled. Exits non-zero when the input is invalid.`,
		Example: `  tlekit validate iss.tle
  tlekit validate --mode permissive degraded.tle`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions()
			if err != nil {
				return err
			}
			text, err := readInput(args)
			if err != nil {
				return err
			}

			res := tle.Validate(text, opts)
			printJSON(os.Stdout, res)
			if !res.IsValid {
				return fmt.Errorf("input invalid with %d error(s)", len(res.Errors))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
