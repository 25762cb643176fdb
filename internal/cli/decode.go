package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/params"
	"github.com/roach88/strata/internal/query"
)

// DecodeResult holds a decoded query report: the compact rendering plus
// the canonical re-encoding of the decoded query.
type DecodeResult struct {
	Abbrev string            `json:"abbrev"`
	Params map[string]string `json:"params"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <params-file>",
		Short: "Rebuild a query from its wire parameter map",
		Long: `Rebuild a query from a JSON file holding the flat parameter map, then
report the compact rendering and the canonical re-encoding. A healthy
round trip re-encodes to the same parameters it was given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDecode(opts *RootOptions, paramsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := os.ReadFile(paramsPath)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading params file", err)
	}

	var p params.Params
	if err := json.Unmarshal(data, &p); err != nil {
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parsing params file", err)
	}

	q, err := params.ParamsToQuery(p)
	if err != nil {
		// A malformed parameter is an input failure, not a command error.
		var de *params.DecodeError
		if errors.As(err, &de) {
			_ = formatter.Error(ErrCodeBadParams, err.Error(), map[string]string{"param": de.Param})
			return WrapExitError(ExitFailure, fmt.Sprintf("param %q", de.Param), err)
		}
		_ = formatter.Error(ErrCodeBadParams, err.Error(), nil)
		return WrapExitError(ExitFailure, "decoding failed", err)
	}

	reencoded, err := params.QueryToParams(q)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "re-encoding failed", err)
	}

	result := DecodeResult{
		Abbrev: query.Abbrev(q),
		Params: reencoded,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.Abbrev)
	writeParamsText(formatter, reencoded)
	return nil
}
