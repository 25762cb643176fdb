package model

import "time"

// Well-known event names present on every item.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event records a named lifecycle moment on an item.
type Event struct {
	// At is the event instant. Nil means the event has not happened
	// (a live item's deleted event has At == nil).
	At *time.Time

	// By optionally identifies the actor's key.
	By *Key

	// Agg optionally carries a nested item snapshot attached to the event.
	Agg *Item
}

// AggEntry is one member of a named aggregation collection: a keyed
// sub-item carried inline on the parent.
type AggEntry struct {
	Key  Key
	Item *Item
}

// Item is an identified, timestamped, optionally soft-deleted record.
//
// The typed members (Key, Events, Refs, Aggs) are kept apart from the
// open named fields, which live in the Fields side map; this avoids
// name collisions between user fields and the structural members.
//
// Items are read-only inputs to the query core: produced upstream by
// storage adapters and never mutated here. Aggregation entries are
// owned snapshots, not shared mutable state.
type Item struct {
	// Key identifies the item (primary or composite).
	Key Key

	// Events holds named events. EventCreated and EventUpdated are
	// mandatory with non-nil At; EventDeleted has nil At while live.
	Events map[string]Event

	// Refs holds named single-key pointers to other items.
	Refs map[string]Key

	// Aggs holds named ordered aggregation collections.
	Aggs map[string][]AggEntry

	// Fields holds the open named field values.
	Fields map[string]Value
}

// Field looks up an open named field. The second return distinguishes
// an absent field from a present Null: comparisons against absent
// fields always fail, a present Null matches "== null".
func (it *Item) Field(name string) (Value, bool) {
	if it == nil || it.Fields == nil {
		return nil, false
	}
	v, ok := it.Fields[name]
	return v, ok
}

// Deleted reports whether the item has been soft-deleted.
func (it *Item) Deleted() bool {
	if it == nil {
		return false
	}
	ev, ok := it.Events[EventDeleted]
	return ok && ev.At != nil
}
