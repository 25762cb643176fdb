package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/strata/internal/model"
)

// Put upserts an item by its key and returns the stored form.
//
// The stored form carries stamped lifecycle events: created keeps the
// incoming instant when present and is stamped otherwise, updated is
// always restamped to the write instant (preserving any actor), and the
// deleted event passes through untouched. The input item is not mutated.
func (s *Store) Put(ctx context.Context, it *model.Item) (*model.Item, error) {
	if it == nil {
		return nil, fmt.Errorf("put: item is required")
	}
	if it.Key.Type == "" || it.Key.ID == "" {
		return nil, fmt.Errorf("put: item key is incomplete")
	}

	now := s.clock.Now().UTC()
	stored := stampEvents(it, now)

	body, err := MarshalItem(stored)
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", stored.Key, err)
	}

	deleted := 0
	if stored.Deleted() {
		deleted = 1
	}
	instant := now.Format(time.RFC3339Nano)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items
		(id, key_type, key_id, key_text, body, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key_text) DO UPDATE SET
			body = excluded.body,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`,
		s.ids.Generate(),
		stored.Key.Type,
		stored.Key.ID,
		stored.Key.String(),
		body,
		deleted,
		instant,
		instant,
	)
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", stored.Key, err)
	}

	return stored, nil
}

// Delete soft-deletes the item: the row stays, its deleted event is
// stamped with the delete instant. Deleting an already-deleted item is a
// no-op; deleting an absent one returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, key model.Key) error {
	it, err := s.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if it.Deleted() {
		return nil
	}

	now := s.clock.Now().UTC()
	events := cloneEvents(it.Events, 1)
	events[model.EventDeleted] = model.Event{At: &now}
	it.Events = events

	body, err := MarshalItem(it)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE items SET body = ?, deleted = 1, updated_at = ?
		WHERE key_text = ?
	`, body, now.Format(time.RFC3339Nano), key.String())
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// stampEvents returns a shallow copy of the item with created/updated
// events stamped. The copy gets its own events map so the caller's item
// is left alone.
func stampEvents(it *model.Item, now time.Time) *model.Item {
	stored := *it
	events := cloneEvents(it.Events, 2)

	if ev, ok := events[model.EventCreated]; !ok || ev.At == nil {
		ev.At = &now
		events[model.EventCreated] = ev
	}

	updated := events[model.EventUpdated]
	updated.At = &now
	events[model.EventUpdated] = updated

	stored.Events = events
	return &stored
}

func cloneEvents(events map[string]model.Event, extra int) map[string]model.Event {
	cloned := make(map[string]model.Event, len(events)+extra)
	for name, ev := range events {
		cloned[name] = ev
	}
	return cloned
}
