package store

import "errors"

// ErrNotFound is returned by Get and Delete when no row exists for the key.
var ErrNotFound = errors.New("item not found")
