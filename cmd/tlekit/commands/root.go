package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/star/tlekit/internal/tle"
)

// Execute builds the root command and runs it with the given context.
func Execute(ctx context.Context, version, commit string) error {
	root := &cobra.Command{
		Use:   "tlekit",
		Short: "Parse, validate and repair Two-Line Element sets",
		Long: `tlekit works with NORAD Two-Line Element (TLE) satellite data.

It parses the fixed-width 69-character format, verifies the mod-10
checksums, validates field ranges, flags domain anomalies (stale epochs,
decaying orbits, classified data) and can recover best-effort records
from degraded feeds.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newParseCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newRecoverCommand())
	root.AddCommand(newChecksumCommand())

	return root.ExecuteContext(ctx)
}

// optionFlags are the validation flags shared by parse/validate/recover.
type optionFlags struct {
	mode        string
	noChecksums bool
	noRanges    bool
	noWarnings  bool
	comments    bool
	noPartial   bool
}

func (f *optionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "strict", "validation mode: strict or permissive")
	cmd.Flags().BoolVar(&f.noChecksums, "no-checksums", false, "demote checksum mismatches to warnings")
	cmd.Flags().BoolVar(&f.noRanges, "no-ranges", false, "skip numeric range checks")
	cmd.Flags().BoolVar(&f.noWarnings, "no-warnings", false, "suppress advisory warnings")
	cmd.Flags().BoolVar(&f.comments, "comments", false, "preserve leading-# comment lines")
	cmd.Flags().BoolVar(&f.noPartial, "no-partial", false, "drop partial data from failed recovery parses")
}

func (f *optionFlags) toOptions() (tle.Options, error) {
	if f.mode != string(tle.ModeStrict) && f.mode != string(tle.ModePermissive) {
		return tle.Options{}, fmt.Errorf("invalid mode %q: must be strict or permissive", f.mode)
	}
	opts := tle.DefaultOptions()
	opts.Mode = tle.Mode(f.mode)
	opts.StrictChecksums = !f.noChecksums
	opts.ValidateRanges = !f.noRanges
	opts.IncludeWarnings = !f.noWarnings
	opts.IncludeComments = f.comments
	opts.IncludePartialResults = !f.noPartial
	return opts, nil
}

// readInput returns the contents of the file argument, or stdin when no
// argument (or "-") is given.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}
