package query

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/strata/internal/model"
)

// Sentinels for queries with nothing to render.
const (
	// AbbrevEmpty is rendered for a query with no clauses or hints.
	AbbrevEmpty = "EMPTY_QUERY"

	// AbbrevEmptyCompound is rendered for a compound node with no
	// children. Rendering never raises on degenerate trees.
	AbbrevEmptyCompound = "CC(EMPTY)"
)

// Abbrev renders a deterministic compact form of a query for diagnostics
// and cache keys. Identical queries produce byte-identical output.
//
// Segments appear space-separated in fixed order: refs, condition tree,
// aggregations, events, limit, offset. Map-keyed clauses render in sorted
// name order.
//
// Grammar:
//
//	R(name,keyType,primaryId)     reference constraint
//	CC(op,child1,child2,...)      compound condition
//	(column,value,operator)       leaf condition
//	A(name,<sub>)                 aggregation sub-query
//	(Ename)                       event range constraint
//	L<n> / O<n>                   limit / offset
func Abbrev(q *ItemQuery) string {
	if q == nil {
		return AbbrevEmpty
	}

	var segments []string

	for _, name := range sortedKeys(q.Refs) {
		ref := q.Refs[name]
		segments = append(segments, "R("+name+","+ref.Type+","+ref.ID+")")
	}

	if q.Condition != nil {
		segments = append(segments, abbrevNode(q.Condition))
	}

	for _, name := range sortedKeys(q.Aggs) {
		segments = append(segments, "A("+name+","+Abbrev(q.Aggs[name])+")")
	}

	for _, name := range sortedKeys(q.Events) {
		segments = append(segments, "(E"+name+")")
	}

	if q.Limit != nil {
		segments = append(segments, "L"+strconv.Itoa(*q.Limit))
	}
	if q.Offset != nil {
		segments = append(segments, "O"+strconv.Itoa(*q.Offset))
	}

	if len(segments) == 0 {
		return AbbrevEmpty
	}
	return strings.Join(segments, " ")
}

// abbrevNode renders one condition-tree node.
func abbrevNode(n Node) string {
	switch node := n.(type) {
	case *Condition:
		return "(" + node.Column + "," + abbrevValue(node.Value) + "," + string(node.Operator) + ")"
	case *Compound:
		if len(node.Conditions) == 0 {
			return AbbrevEmptyCompound
		}
		parts := make([]string, 0, len(node.Conditions)+1)
		parts = append(parts, string(node.Op))
		for _, child := range node.Conditions {
			parts = append(parts, abbrevNode(child))
		}
		return "CC(" + strings.Join(parts, ",") + ")"
	default:
		// Unreachable for the sealed union; render something stable
		// rather than raising.
		return "(?)"
	}
}

// abbrevValue renders a value compactly. Strings render raw (no quotes);
// this is a diagnostic form, not a parseable one.
func abbrevValue(v model.Value) string {
	switch val := v.(type) {
	case nil, model.Null:
		return "null"
	case model.String:
		return string(val)
	case model.Number:
		return model.FormatNumber(float64(val))
	case model.Bool:
		return strconv.FormatBool(bool(val))
	case model.Time:
		return time.Time(val).UTC().Format(time.RFC3339Nano)
	case model.Array:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = abbrevValue(elem)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return "?"
	}
}

// sortedKeys returns map keys in sorted order for deterministic rendering.
func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
