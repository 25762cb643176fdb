package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/validate"
)

// ValidationResult holds key validation results.
type ValidationResult struct {
	Valid  bool             `json:"valid"`
	Errors []ValidationItem `json:"errors,omitempty"`
}

// ValidationItem reports one failed item.
type ValidationItem struct {
	Key      string `json:"key"`
	Code     string `json:"code"`
	Field    string `json:"field,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Message  string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var chain string
	var primaryType string

	cmd := &cobra.Command{
		Use:   "validate <items-file>",
		Short: "Check item keys against an expected type hierarchy",
		Long: `Check every item in a document against an expected type hierarchy.

With --chain, each key's type tag and full location chain must match the
comma-separated hierarchy in order (e.g. --chain comment,post,user).
With --type, only the primary type tag is checked.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (chain == "") == (primaryType == "") {
				return NewExitError(ExitCommandError, "exactly one of --chain or --type is required")
			}
			return runValidate(rootOpts, args[0], chain, primaryType, cmd)
		},
	}

	cmd.Flags().StringVar(&chain, "chain", "", "expected type chain, primary first (comma-separated)")
	cmd.Flags().StringVar(&primaryType, "type", "", "expected primary type tag only")

	return cmd
}

func runValidate(opts *RootOptions, itemsPath, chain, primaryType string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	items, err := loadItems(formatter, itemsPath)
	if err != nil {
		return err
	}

	var failures []ValidationItem
	for _, it := range items {
		var checkErr error
		if chain != "" {
			checkErr = validate.Keys(it, strings.Split(chain, ","))
		} else {
			checkErr = validate.PK(it, primaryType)
		}
		if checkErr == nil {
			continue
		}

		var ve *validate.Error
		if errors.As(checkErr, &ve) {
			failures = append(failures, ValidationItem{
				Key:      it.Key.String(),
				Code:     string(ve.Code),
				Field:    ve.Field,
				Expected: ve.Expected,
				Actual:   ve.Actual,
				Message:  ve.Message,
			})
		} else {
			failures = append(failures, ValidationItem{
				Key:     it.Key.String(),
				Code:    ErrCodeGeneric,
				Message: checkErr.Error(),
			})
		}
	}

	if len(failures) > 0 {
		return outputValidationFailures(formatter, failures)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d item(s) valid\n", len(items))
	return nil
}

// outputValidationFailures reports failed items and exits with code 1.
func outputValidationFailures(formatter *OutputFormatter, failures []ValidationItem) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: failures},
			Error: &CLIError{
				Code:    failures[0].Code,
				Message: failures[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(failures)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, f := range failures {
		fmt.Fprintf(formatter.Writer, "%s\n", f.Key)
		if f.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s (field=%s, expected=%s, actual=%s)\n\n",
				f.Code, f.Message, f.Field, f.Expected, f.Actual)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", f.Code, f.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(failures)))
}
