// Package params converts structured queries to and from flat string-keyed
// parameter maps, for transport across boundaries limited to string values
// (HTTP query strings, RPC parameter maps).
//
// Every structured member of a query (condition tree, refs, events, aggs,
// orderBy) encodes to a single canonical JSON string under its own key;
// the limit/offset scalars pass through as decimal strings. Decoding is
// the exact inverse.
//
// ROUND-TRIP LAW:
//
//	ParamsToQuery(QueryToParams(q)) == q
//
// for every legal query, including deep nesting, an explicitly-empty
// orderBy (survives as empty, never dropped), and absent optional members
// (stay absent, never defaulted). The law holds under iteration: encoding
// is canonical (sorted keys, NFC strings, no HTML escaping, shortest float
// form), so identical queries always produce byte-identical parameter
// maps, keeping collaborating cache keys stable.
package params

import (
	"errors"
	"fmt"
)

// Parameter keys for the structured query members.
const (
	KeyCondition = "condition"
	KeyRefs      = "refs"
	KeyEvents    = "events"
	KeyAggs      = "aggs"
	KeyOrderBy   = "orderBy"
	KeyLimit     = "limit"
	KeyOffset    = "offset"
)

// Params is a flat string-keyed parameter map. Keys other than the ones
// above are ignored by ParamsToQuery, so a query can share a parameter
// map with unrelated operation parameters.
type Params map[string]string

// DecodeError reports that one encoded parameter could not be decoded.
// The underlying cause is always propagated; a malformed parameter never
// silently produces an empty structure.
type DecodeError struct {
	// Param is the parameter key that failed.
	Param string

	// Err is the underlying decode failure.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode param %q: %v", e.Param, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is a parameter decode failure.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
