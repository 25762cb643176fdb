package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/doc"
	"github.com/roach88/strata/internal/match"
	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/query"
)

// MatchResult holds a match evaluation report.
type MatchResult struct {
	Abbrev   string   `json:"abbrev"`
	Matched  []string `json:"matched"`
	Examined int      `json:"examined"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <items-file> <query-file>",
		Short: "Evaluate a query against a set of items",
		Long: `Evaluate a query against a set of items and report the matching keys.

Items and queries load from CUE, YAML, or JSON documents; the format is
chosen by file extension. Items are evaluated in listed order.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runMatch(opts *RootOptions, itemsPath, queryPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	items, err := loadItems(formatter, itemsPath)
	if err != nil {
		return err
	}
	q, err := loadQuery(formatter, queryPath)
	if err != nil {
		return err
	}

	matched := []string{}
	for i, it := range items {
		ok, evalErr := match.Match(it, q)
		if evalErr != nil {
			_ = formatter.Error(ErrCodeGeneric, evalErr.Error(), nil)
			return WrapExitError(ExitFailure, fmt.Sprintf("items[%d] (%s)", i, it.Key), evalErr)
		}
		if ok {
			matched = append(matched, it.Key.String())
		}
	}

	result := MatchResult{
		Abbrev:   query.Abbrev(q),
		Matched:  matched,
		Examined: len(items),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	formatter.VerboseLog("query: %s", result.Abbrev)
	for _, key := range matched {
		fmt.Fprintln(formatter.Writer, key)
	}
	fmt.Fprintf(formatter.Writer, "%d of %d item(s) matched\n", len(matched), len(items))
	return nil
}

// loadItems loads an items document and converts it into model items,
// reporting problems as command errors (exit code 2).
func loadItems(formatter *OutputFormatter, path string) ([]*model.Item, error) {
	itemDocs, err := LoadItemDocs(path)
	if err != nil {
		return nil, commandError(formatter, err)
	}
	formatter.VerboseLog("loaded %d item(s) from %s", len(itemDocs), path)

	items := make([]*model.Item, len(itemDocs))
	for i := range itemDocs {
		it, err := itemDocs[i].ToItem()
		if err != nil {
			wrapped := fmt.Errorf("items[%d]: %w", i, err)
			_ = formatter.Error(ErrCodeBadDoc, wrapped.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "invalid items document", wrapped)
		}
		items[i] = it
	}
	return items, nil
}

// loadQuery loads a query document and converts it, reporting problems
// as command errors (exit code 2).
func loadQuery(formatter *OutputFormatter, path string) (*query.ItemQuery, error) {
	queryDoc, err := LoadQueryDoc(path)
	if err != nil {
		return nil, commandError(formatter, err)
	}
	return convertQuery(formatter, queryDoc)
}

func convertQuery(formatter *OutputFormatter, queryDoc *doc.QueryDoc) (*query.ItemQuery, error) {
	q, err := queryDoc.ToQuery()
	if err != nil {
		_ = formatter.Error(ErrCodeBadDoc, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "invalid query document", err)
	}
	return q, nil
}

// commandError reports a load error through the formatter and converts
// it into an exit-code-2 error.
func commandError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return WrapExitError(ExitCommandError, loadErr.Message, err)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "command failed", err)
}
