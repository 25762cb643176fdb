package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/strata/internal/match"
	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/query"
)

// Get returns the item stored under key, soft-deleted or not.
// Returns ErrNotFound when no row exists.
func (s *Store) Get(ctx context.Context, key model.Key) (*model.Item, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM items WHERE key_text = ?
	`, key.String()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	it, err := UnmarshalItem(body)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return it, nil
}

// Query returns the items of the given type that match q, in a
// deterministic order: q's orderBy when present, key text otherwise.
// Offset and limit apply after ordering. Soft-deleted items are not
// filtered out; a query that wants live items only says so explicitly.
//
// Candidate rows are scanned ORDER BY key_text COLLATE BINARY ASC so
// results are identical across runs; matching is evaluated in memory.
func (s *Store) Query(ctx context.Context, keyType string, q *query.ItemQuery) ([]*model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM items
		WHERE key_type = ?
		ORDER BY key_text COLLATE BINARY ASC
	`, keyType)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", keyType, err)
	}
	defer rows.Close()

	matched := []*model.Item{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("query %s: %w", keyType, err)
		}
		it, err := UnmarshalItem(body)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", keyType, err)
		}

		ok, err := match.Match(it, q)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", keyType, err)
		}
		if ok {
			matched = append(matched, it)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", keyType, err)
	}

	if q != nil {
		sortItems(matched, q.OrderBy)
		matched = window(matched, q.Offset, q.Limit)
	}
	return matched, nil
}

// sortItems orders items by the given fields. The sort is stable, so
// ties keep the deterministic scan order. Absent fields sort after
// present ones; values of incomparable kinds rank equal and fall through
// to the next field.
func sortItems(items []*model.Item, order []query.OrderBy) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, ob := range order {
			va, aok := items[i].Field(ob.Field)
			vb, bok := items[j].Field(ob.Field)
			if !aok || !bok {
				if aok == bok {
					continue
				}
				return aok
			}
			cmp, ok := model.Compare(va, vb)
			if !ok || cmp == 0 {
				continue
			}
			if ob.Direction == query.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// window applies offset then limit. An offset past the end yields an
// empty result, never an error.
func window(items []*model.Item, offset, limit *int) []*model.Item {
	if offset != nil {
		n := *offset
		if n < 0 {
			n = 0
		}
		if n >= len(items) {
			return []*model.Item{}
		}
		items = items[n:]
	}
	if limit != nil && *limit >= 0 && *limit < len(items) {
		items = items[:*limit]
	}
	return items
}
