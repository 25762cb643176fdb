package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/query"
)

// NewAbbrevCommand creates the abbrev command.
func NewAbbrevCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abbrev <query-file>",
		Short: "Render the compact form of a query",
		Long: `Render the deterministic compact form of a query document. Identical
queries always render identically, which makes the output usable as a
log line or cache key.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAbbrev(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runAbbrev(opts *RootOptions, queryPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	q, err := loadQuery(formatter, queryPath)
	if err != nil {
		return err
	}

	abbrev := query.Abbrev(q)
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"abbrev": abbrev})
	}
	fmt.Fprintln(formatter.Writer, abbrev)
	return nil
}
