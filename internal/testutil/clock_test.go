package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFixedClock(base)

	assert.Equal(t, base, clock.Now())
	assert.Equal(t, base, clock.Now(), "reading the clock must not move it")

	moved := clock.Advance(time.Minute)
	assert.Equal(t, base.Add(time.Minute), moved)
	assert.Equal(t, moved, clock.Now())

	clock.Set(base)
	assert.Equal(t, base, clock.Now())
}

func TestFixedClock_NormalizesToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	clock := NewFixedClock(time.Date(2024, 6, 1, 7, 0, 0, 0, est))

	assert.Equal(t, time.UTC, clock.Now().Location())
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), clock.Now())
}

func TestFixedIDs(t *testing.T) {
	gen := NewFixedIDs("id-1", "id-2")

	assert.Equal(t, "id-1", gen.Generate())
	assert.Equal(t, 1, gen.Remaining())
	assert.Equal(t, "id-2", gen.Generate())

	assert.Panics(t, func() { gen.Generate() }, "exhaustion must fail loudly")
}
