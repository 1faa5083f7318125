// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers to distinguish
// between different failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrConflict is returned when a write collides with an existing row,
// such as recording the same hold twice.
var ErrConflict = errors.New("conflict")

// ErrInvalidKey is returned when a catalog key such as "s12" cannot be
// mapped back to a numeric row ID.
var ErrInvalidKey = errors.New("invalid catalog key")
