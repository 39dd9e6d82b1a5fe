// Package repository defines the persistence contracts for sellers and
// products together with an in-memory reference implementation and a
// MySQL implementation.  Both stores use a per-row version counter for
// optimistic concurrency: entities are read with their version and
// written back only if the version is unchanged.
package repository

import "errors"

// ErrNotFound is returned when the requested seller or product does not
// exist.  Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when a seller attempts an operation on a
// product owned by another seller.  Handlers should translate this into
// an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
