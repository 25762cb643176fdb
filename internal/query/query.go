package query

import (
	"time"

	"github.com/roach88/strata/internal/model"
)

// Direction orders a sort field.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderBy is one ordering hint: a field and a direction.
type OrderBy struct {
	Field     string
	Direction Direction
}

// EventRange bounds a named event's instant. Both bounds are inclusive
// and independently optional; the empty range still requires the event
// to exist with a non-nil instant.
type EventRange struct {
	Start *time.Time
	End   *time.Time
}

// ItemQuery is the full structured predicate plus its ordering and
// pagination envelope.
//
// Every member is independently optional and the present members are
// implicitly AND-ed. The distinction between an absent member and a
// present-but-empty one is significant and must survive serialization:
// a nil OrderBy is absent, a non-nil empty OrderBy is an explicit
// "no ordering" that round-trips as such.
type ItemQuery struct {
	// Condition is the root of the AND/OR condition tree. Nil means no
	// condition clause.
	Condition Node

	// Refs constrains named references to structurally-equal keys.
	Refs map[string]model.Key

	// Events constrains named event instants to inclusive ranges.
	Events map[string]EventRange

	// Aggs applies existential sub-queries to named aggregation
	// collections: at least one entry must match.
	Aggs map[string]*ItemQuery

	// OrderBy lists ordering hints for adapters that sort result sets.
	OrderBy []OrderBy

	// Limit caps the result count; Offset skips leading results.
	// Both are hints for adapters, not matcher inputs.
	Limit  *int
	Offset *int
}

// IsEmpty reports whether no clause or hint is present. The empty query
// matches every item.
func (q *ItemQuery) IsEmpty() bool {
	if q == nil {
		return true
	}
	return q.Condition == nil &&
		len(q.Refs) == 0 &&
		len(q.Events) == 0 &&
		len(q.Aggs) == 0 &&
		q.OrderBy == nil &&
		q.Limit == nil &&
		q.Offset == nil
}
