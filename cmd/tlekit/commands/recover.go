package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/star/tlekit/internal/tle"
)

func newRecoverCommand() *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "recover [file]",
		Short: "Parse a degraded TLE with best-effort recovery",
		Long: `Run the state-machine parser over possibly malformed TLE text.

The recovery parser never rejects input outright: it repairs what it
can (extra lines, truncated fields, checksum failures), records every
recovery action it takes and returns best-effort data together with
the complete diagnostic trail. Always exits zero; inspect "success" in
the output.`,
		Example: `  tlekit recover degraded.tle
  cat feed-fragment.txt | tlekit recover --no-partial`,
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

			printJSON(os.Stdout, tle.ParseWithRecovery(text, opts))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
