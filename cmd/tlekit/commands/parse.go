package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/star/tlekit/internal/tle"
)

func newParseCommand() *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a TLE into a structured record",
		Long: `Parse a 2- or 3-line TLE from a file or stdin and print the
structured record as JSON.

In strict mode (the default) any checksum, classification,
satellite-number or range violation rejects the input and the full
diagnostic list is printed. In permissive mode the same violations are
demoted to warnings attached to the record.`,
		Example: `  # Parse from a file
  tlekit parse iss.tle

  # Parse from stdin, tolerating a bad checksum
  cat iss.tle | tlekit parse --mode permissive`,
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

			record, err := tle.Parse(text, opts)
			if err != nil {
				var verr *tle.ValidationError
				if errors.As(err, &verr) {
					printJSON(os.Stderr, verr)
					return fmt.Errorf("input rejected with %d error(s)", len(verr.Errors))
				}
				return err
			}

			printJSON(os.Stdout, record)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func printJSON(w *os.File, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
