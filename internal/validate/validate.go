// Package validate checks that an item's key matches an expected type
// hierarchy.
//
// Storage adapters route heterogeneous items through shared code paths;
// these checks catch a mis-wired item before it is read or written under
// the wrong type. Errors carry expected vs. actual so an upstream layer
// can attach operation metadata without re-deriving context, and a
// missing subject is reported distinctly from a present-but-mismatched
// one.
package validate

import (
	"github.com/roach88/strata/internal/model"
)

// Keys checks the item's key against an expected type chain: the key's
// own type tag must equal chain[0], and for composite keys the location
// chain must have exactly len(chain)-1 links whose type tags match the
// remaining positions in order.
//
//	validate.Keys(item, []string{"comment", "post", "user"})
//
// passes only for a comment key located under a post under a user, in
// that order. A primary key passes only a single-element chain.
func Keys(it *model.Item, chain []string) error {
	if it == nil {
		return newMissingSubjectError("item")
	}
	if len(chain) == 0 {
		return newMissingSubjectError("expected type chain")
	}

	key := it.Key
	if key.Type != chain[0] {
		return newMismatchError("key.type", chain[0], key.Type)
	}

	wantLocs := chain[1:]
	if len(key.Locations) != len(wantLocs) {
		return newChainLengthError(len(wantLocs), len(key.Locations))
	}
	for i, loc := range key.Locations {
		if loc.Type != wantLocs[i] {
			return newLocationMismatchError(i, wantLocs[i], loc.Type)
		}
	}
	return nil
}

// PK checks only the primary type tag, ignoring any location chain.
func PK(it *model.Item, expectedType string) error {
	if it == nil {
		return newMissingSubjectError("item")
	}
	if it.Key.Type != expectedType {
		return newMismatchError("key.type", expectedType, it.Key.Type)
	}
	return nil
}
