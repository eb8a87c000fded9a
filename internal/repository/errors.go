// Package repository defines the persistence layer and the sentinel errors
// shared across its stores.  Handlers translate these sentinels into the
// fixed set of HTTP responses; nothing below the handler layer knows about
// status codes.
package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.  Handlers
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert collides with an existing record,
// such as favoriting the same Pokémon twice.  Handlers translate this into
// an HTTP 409 response.
var ErrDuplicate = errors.New("already exists")

// ErrEmailExists is returned when registering with an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")
