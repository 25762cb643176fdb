package store

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the instant stamped onto created/updated/deleted events.
//
// The store never reads time.Now directly; injecting the clock keeps
// stored bodies reproducible under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock, truncated to UTC.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// IDGenerator produces surrogate row ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 row ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, making ids
// sortable by creation time. Helpful when inspecting the database directly.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
