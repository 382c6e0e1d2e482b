package domain

import "errors"

// ErrNotFound is returned by stores when a record does not exist.
// Repositories translate their driver's not-found error into this one so
// callers never depend on gorm directly.
var ErrNotFound = errors.New("record not found")
