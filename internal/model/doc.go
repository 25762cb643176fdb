// Package model provides the foundational data model for strata:
// hierarchical keys, items, and the constrained value union.
//
// This package contains type definitions and the canonical value encoding.
// All other internal packages import model; model imports nothing internal.
// This keeps the data model the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Keys are immutable value types; composite-ness is a structural
//     property (non-empty location chain), never a stored discriminant
//   - Open item fields live in an explicit side map, separate from the
//     typed key/events/refs/aggs members
//   - Values form a sealed union (Null, String, Number, Bool, Time, Array)
//     so evaluators can type-switch exhaustively
//   - Canonical encoding is deterministic: sorted object keys, NFC
//     normalized strings, no HTML escaping, shortest float formatting
package model
