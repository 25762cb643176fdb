// Package match evaluates a structured query against a single in-memory
// item.
//
// Matching is a pure, synchronous computation over immutable inputs: no
// I/O, no shared state, no memoization. Semantically-equal query instances
// commonly arise after a serialization round-trip, so results must never
// depend on instance identity.
package match

import (
	"sort"

	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/query"
)

// Match reports whether the item satisfies the query.
//
// A query matches iff ALL present clauses match; absent clauses match
// trivially, so the nil/empty query matches everything. Clauses evaluate
// in deterministic order (refs, condition tree, aggregations, events),
// short-circuiting on the first failure; map-keyed clauses iterate in
// sorted name order. The order affects which malformed-predicate error
// surfaces first, not correctness.
//
// Soft-deleted items are not excluded here: callers that want live items
// only must say so with an event range or condition clause.
func Match(it *model.Item, q *query.ItemQuery) (bool, error) {
	if q == nil {
		return true, nil
	}

	// 1. Reference clause: structural key equality per named ref.
	for _, name := range sortedNames(q.Refs) {
		want := q.Refs[name]
		got, ok := lookupRef(it, name)
		if !ok || !got.Equal(want) {
			return false, nil
		}
	}

	// 2. Condition clause: recursive AND/OR tree.
	if q.Condition != nil {
		ok, err := evalNode(it, q.Condition)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	// 3. Aggregation clause: existential match over each named collection.
	for _, name := range sortedNames(q.Aggs) {
		ok, err := matchAgg(it, name, q.Aggs[name])
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	// 4. Event-range clause: inclusive bounds per named event.
	for _, name := range sortedNames(q.Events) {
		if !matchEvent(it, name, q.Events[name]) {
			return false, nil
		}
	}

	return true, nil
}

func lookupRef(it *model.Item, name string) (model.Key, bool) {
	if it == nil || it.Refs == nil {
		return model.Key{}, false
	}
	k, ok := it.Refs[name]
	return k, ok
}

// matchAgg requires a non-empty collection with at least one entry whose
// nested item satisfies the sub-query.
func matchAgg(it *model.Item, name string, sub *query.ItemQuery) (bool, error) {
	if it == nil || len(it.Aggs[name]) == 0 {
		return false, nil
	}
	for _, entry := range it.Aggs[name] {
		ok, err := Match(entry.Item, sub)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// matchEvent requires the named event to exist with a non-nil instant
// inside the inclusive range. An event with a nil instant never matches,
// even against the empty range.
func matchEvent(it *model.Item, name string, r query.EventRange) bool {
	if it == nil {
		return false
	}
	ev, ok := it.Events[name]
	if !ok || ev.At == nil {
		return false
	}
	at := *ev.At
	if r.Start != nil && at.Before(*r.Start) {
		return false
	}
	if r.End != nil && at.After(*r.End) {
		return false
	}
	return true
}

// evalNode recursively evaluates the condition tree.
//
// AND matches iff every child matches, short-circuiting on the first
// failure; OR matches iff any child matches, short-circuiting on the
// first success. The empty AND is vacuously true, the empty OR false.
func evalNode(it *model.Item, n query.Node) (bool, error) {
	switch node := n.(type) {
	case *query.Condition:
		return evalCondition(it, node)
	case *query.Compound:
		switch node.Op {
		case query.Or:
			for _, child := range node.Conditions {
				ok, err := evalNode(it, child)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		default: // query.And
			for _, child := range node.Conditions {
				ok, err := evalNode(it, child)
				if err != nil {
					return false, err
				}
				if !ok {
					return false, nil
				}
			}
			return true, nil
		}
	default:
		// Unreachable for the sealed union.
		return false, nil
	}
}

// evalCondition applies one leaf comparison.
//
// An absent field fails every comparison, including "== null"; that is
// distinct from a present falsy field (0, false, ""). A null condition
// value with any operator other than == / != is a malformed predicate.
func evalCondition(it *model.Item, c *query.Condition) (bool, error) {
	valueIsNull := isNull(c.Value)

	// The null guard applies before field lookup: condition(col, null, '>')
	// raises even when the field is absent.
	switch c.Operator {
	case query.OpEqual, query.OpNotEqual:
	default:
		if valueIsNull {
			return false, newNullComparisonError(c.Column, c.Operator)
		}
	}

	field, present := it.Field(c.Column)
	if !present {
		return false, nil
	}

	switch c.Operator {
	case query.OpEqual:
		return model.Equal(field, c.Value), nil

	case query.OpNotEqual:
		return !model.Equal(field, c.Value), nil

	case query.OpGreater, query.OpGreaterOrEqual, query.OpLess, query.OpLessOrEqual:
		cmp, ok := model.Compare(field, c.Value)
		if !ok {
			return false, nil
		}
		switch c.Operator {
		case query.OpGreater:
			return cmp > 0, nil
		case query.OpGreaterOrEqual:
			return cmp >= 0, nil
		case query.OpLess:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}

	case query.OpIn:
		arr, ok := c.Value.(model.Array)
		if !ok {
			return false, newNonArrayValueError(c.Column, c.Operator)
		}
		return contains(arr, field), nil

	case query.OpNotIn:
		arr, ok := c.Value.(model.Array)
		if !ok {
			return false, newNonArrayValueError(c.Column, c.Operator)
		}
		return !contains(arr, field), nil

	case query.OpArrayContains:
		fieldArr, ok := field.(model.Array)
		if !ok {
			return false, nil
		}
		return contains(fieldArr, c.Value), nil

	case query.OpArrayContainsAny:
		wantArr, ok := c.Value.(model.Array)
		if !ok {
			return false, newNonArrayValueError(c.Column, c.Operator)
		}
		fieldArr, ok := field.(model.Array)
		if !ok {
			return false, nil
		}
		for _, want := range wantArr {
			if contains(fieldArr, want) {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, newUnknownOperatorError(c.Column, c.Operator)
	}
}

func isNull(v model.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(model.Null)
	return ok
}

func contains(arr model.Array, v model.Value) bool {
	for _, elem := range arr {
		if model.Equal(elem, v) {
			return true
		}
	}
	return false
}

func sortedNames[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
