// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrInvalidState is returned when an update cannot be performed
// because of the record's lifecycle state, such as editing a
// commission whose status is no longer Pending. Handlers should
// translate this into an HTTP 409 response.
var ErrInvalidState = errors.New("invalid state")
