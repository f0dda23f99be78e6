package storage

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("resource not found")
var ErrConflict = errors.New("resource conflict (e.g., duplicate key)")

// ErrStaleWrite means the record changed after it was read, so a versioned write was refused.
var ErrStaleWrite = fmt.Errorf("stale write: %w", ErrConflict)

// ErrDuplicateEmail is a conflict on the users.email unique index.
var ErrDuplicateEmail = fmt.Errorf("duplicate email: %w", ErrConflict)
