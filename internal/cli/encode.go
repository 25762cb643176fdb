package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/params"
)

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <query-file>",
		Short: "Flatten a query into its wire parameter map",
		Long: `Flatten a query document into the scalar parameter map used to move
queries across process boundaries. The encoding is canonical: the same
query always produces byte-identical parameter values.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runEncode(opts *RootOptions, queryPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	q, err := loadQuery(formatter, queryPath)
	if err != nil {
		return err
	}

	p, err := params.QueryToParams(q)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "encoding failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string(p))
	}

	writeParamsText(formatter, p)
	return nil
}

// writeParamsText prints params one per line, key=value, in sorted key
// order so output is stable.
func writeParamsText(formatter *OutputFormatter, p params.Params) {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(formatter.Writer, "%s=%s\n", k, p[k])
	}
}
