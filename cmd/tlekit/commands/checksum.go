package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/star/tlekit/internal/tle"
)

func newChecksumCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "checksum [file]",
		Short: "Compute or verify NORAD mod-10 line checksums",
		Long: `Compute the mod-10 checksum of every data line in the input.

With --verify, each 69-character line's declared checksum digit is
checked against the computed one and the result is printed per line;
the command exits non-zero if any line fails.`,
		Example: `  tlekit checksum iss.tle
  tlekit checksum --verify iss.tle`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args)
			if err != nil {
				return err
			}

			failed := 0
			for _, line := range tle.NormalizeLines(text) {
				if !verify {
					fmt.Printf("%d  %s\n", tle.CalculateChecksum(line), line)
					continue
				}
				res := tle.ValidateChecksum(line)
				status := "ok"
				if !res.IsValid {
					status = res.Issue.String()
					failed++
				}
				fmt.Printf("%-4s %s\n", status, line)
			}

			if failed > 0 {
				printJSON(os.Stderr, map[string]int{"failed_lines": failed})
				return fmt.Errorf("%d line(s) failed checksum verification", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "verify declared checksums instead of computing")
	return cmd
}
