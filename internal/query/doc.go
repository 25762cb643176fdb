// Package query provides the structured predicate model for strata.
//
// An ItemQuery is a serializable predicate over a single item: a recursive
// AND/OR condition tree, reference-key constraints, bounded event-date
// ranges, existential sub-queries over aggregation collections, and an
// ordering/pagination envelope. All members are independently optional and
// implicitly AND-ed; the absent query matches everything.
//
// SEALED INTERFACE:
//
// Node is a sealed interface using the marker method pattern. Only
// Condition (leaf comparison) and Compound (AND/OR composition) implement
// it. This enables exhaustive type switches in the matcher, serializer,
// and abbreviator, and keeps the evaluator a two-case tagged variant
// rather than class-hierarchy dispatch.
//
// Example:
//
//	switch n := node.(type) {
//	case *query.Condition:
//	    // leaf comparison
//	case *query.Compound:
//	    // recursive AND/OR
//	default:
//	    // impossible - the union is sealed
//	}
//
// Queries are built by callers and consumed read-only; evaluation never
// mutates a query, so concurrent use needs no synchronization.
package query
