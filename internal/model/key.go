package model

import "fmt"

// MaxLocations is the maximum depth of a composite key's ancestor chain.
const MaxLocations = 5

// Location is one link in a composite key's ancestor chain.
type Location struct {
	// Type is the location's type tag (e.g., "post").
	Type string `json:"type"`

	// ID is the location's identifier.
	ID string `json:"id"`
}

// Key identifies an item, either flat (primary) or tied to an ordered
// chain of ancestor locations (composite).
//
// A key is composite iff Locations is non-empty. There is no stored
// discriminant: keys arrive from heterogeneous producers, so classification
// must be a pure structural test. Use IsComposite, never a separate flag.
//
// Locations are ordered nearest ancestor first and must never be reordered;
// the order is semantically significant (comment → post → blog).
//
// Keys are immutable value types. Copy freely.
type Key struct {
	// Type is the item's type tag (e.g., "comment").
	Type string `json:"type"`

	// ID is the primary identifier within the location scope.
	ID string `json:"id"`

	// Locations is the ancestor chain, nearest first. Empty for primary keys.
	Locations []Location `json:"locations,omitempty"`
}

// NewKey creates a primary key.
func NewKey(typ, id string) Key {
	return Key{Type: typ, ID: id}
}

// NewCompositeKey creates a composite key with the given ancestor chain.
// Returns an error if the chain exceeds MaxLocations.
func NewCompositeKey(typ, id string, locations ...Location) (Key, error) {
	if len(locations) > MaxLocations {
		return Key{}, fmt.Errorf("key %s/%s: location chain too deep: %d > %d", typ, id, len(locations), MaxLocations)
	}
	locs := make([]Location, len(locations))
	copy(locs, locations)
	return Key{Type: typ, ID: id, Locations: locs}, nil
}

// IsComposite reports whether the key carries an ancestor chain.
// This is the single shared classification predicate; every key-kind
// branch in strata goes through it.
func (k Key) IsComposite() bool {
	return len(k.Locations) > 0
}

// Equal reports structural equality: type, id, and the full location
// chain in order. Identity is never considered.
func (k Key) Equal(other Key) bool {
	if k.Type != other.Type || k.ID != other.ID {
		return false
	}
	if len(k.Locations) != len(other.Locations) {
		return false
	}
	for i, loc := range k.Locations {
		if loc != other.Locations[i] {
			return false
		}
	}
	return true
}

// String renders the key for diagnostics: "type/id" or
// "type/id@loctype/locid,..." for composite keys.
func (k Key) String() string {
	if !k.IsComposite() {
		return k.Type + "/" + k.ID
	}
	s := k.Type + "/" + k.ID + "@"
	for i, loc := range k.Locations {
		if i > 0 {
			s += ","
		}
		s += loc.Type + "/" + loc.ID
	}
	return s
}
