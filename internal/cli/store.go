package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/store"
)

// NewStoreCommand creates the store command group.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Read and write items in a SQLite database",
		Long: `Read and write items in a SQLite database.

The database is created on first use. Deletion is soft: deleted items
keep their row and stay visible to queries.`,
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "strata.db", "path to the SQLite database")

	cmd.AddCommand(newStorePutCommand(rootOpts, &dbPath))
	cmd.AddCommand(newStoreGetCommand(rootOpts, &dbPath))
	cmd.AddCommand(newStoreDeleteCommand(rootOpts, &dbPath))
	cmd.AddCommand(newStoreQueryCommand(rootOpts, &dbPath))

	return cmd
}

func newStorePutCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "put <items-file>",
		Short:         "Upsert items from a document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			items, err := loadItems(formatter, args[0])
			if err != nil {
				return err
			}

			s, err := openStore(formatter, *dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			stored := make([]string, 0, len(items))
			for _, it := range items {
				put, err := s.Put(cmd.Context(), it)
				if err != nil {
					return storeError(formatter, err)
				}
				stored = append(stored, put.Key.String())
			}

			if formatter.Format == "json" {
				return formatter.Success(map[string]any{"stored": stored})
			}
			fmt.Fprintf(formatter.Writer, "stored %d item(s)\n", len(stored))
			return nil
		},
	}
}

func newStoreGetCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	var locs []string

	cmd := &cobra.Command{
		Use:           "get <type> <id>",
		Short:         "Fetch one item by key",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			key, err := buildKey(args[0], args[1], locs)
			if err != nil {
				_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid key", err)
			}

			s, err := openStore(formatter, *dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := s.Get(cmd.Context(), key)
			if err != nil {
				return storeError(formatter, err)
			}

			body, err := store.MarshalItem(it)
			if err != nil {
				return storeError(formatter, err)
			}
			// The canonical body is already JSON; print it either way.
			fmt.Fprintln(formatter.Writer, body)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&locs, "loc", nil, "ancestor location as type/id, nearest first (repeatable)")
	return cmd
}

func newStoreDeleteCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	var locs []string

	cmd := &cobra.Command{
		Use:           "delete <type> <id>",
		Short:         "Soft-delete one item by key",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			key, err := buildKey(args[0], args[1], locs)
			if err != nil {
				_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid key", err)
			}

			s, err := openStore(formatter, *dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(cmd.Context(), key); err != nil {
				return storeError(formatter, err)
			}

			if formatter.Format == "json" {
				return formatter.Success(map[string]string{"deleted": key.String()})
			}
			fmt.Fprintf(formatter.Writer, "deleted %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&locs, "loc", nil, "ancestor location as type/id, nearest first (repeatable)")
	return cmd
}

func newStoreQueryCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "query <type> <query-file>",
		Short:         "Evaluate a query against stored items of a type",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			q, err := loadQuery(formatter, args[1])
			if err != nil {
				return err
			}

			s, err := openStore(formatter, *dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.Query(cmd.Context(), args[0], q)
			if err != nil {
				return storeError(formatter, err)
			}

			keys := make([]string, len(items))
			for i, it := range items {
				keys[i] = it.Key.String()
			}

			if formatter.Format == "json" {
				return formatter.Success(map[string]any{"matched": keys})
			}
			for _, key := range keys {
				fmt.Fprintln(formatter.Writer, key)
			}
			fmt.Fprintf(formatter.Writer, "%d item(s) matched\n", len(keys))
			return nil
		},
	}
}

func newFormatter(rootOpts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
}

func openStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	s, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "opening store", err)
	}
	return s, nil
}

func storeError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(ErrCodeStore, err.Error(), nil)
	return WrapExitError(ExitFailure, "store operation failed", err)
}

// buildKey assembles a key from CLI arguments. Locations arrive as
// "type/id" strings, nearest ancestor first.
func buildKey(typ, id string, locs []string) (model.Key, error) {
	if len(locs) == 0 {
		return model.NewKey(typ, id), nil
	}
	locations := make([]model.Location, len(locs))
	for i, raw := range locs {
		parts := strings.SplitN(raw, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return model.Key{}, fmt.Errorf("invalid location %q: expected type/id", raw)
		}
		locations[i] = model.Location{Type: parts[0], ID: parts[1]}
	}
	return model.NewCompositeKey(typ, id, locations...)
}
