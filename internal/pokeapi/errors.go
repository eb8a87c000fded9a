// Package pokeapi is a typed client for the public Pokémon REST API.  All
// responses are decoded into explicit structs at this boundary; failures are
// classified into a small fixed taxonomy so callers can translate them into
// user-facing messages without inspecting transport details.
package pokeapi

import "errors"

// ErrNotFound is returned when the upstream answers 404 for a resource.
var ErrNotFound = errors.New("pokeapi: resource not found")

// ErrRateLimited is returned when the upstream keeps answering 429 after the
// retry budget is exhausted.
var ErrRateLimited = errors.New("pokeapi: rate limited")

// ErrNoConnection is returned for transport-level failures (DNS, dial,
// timeout).  The catalog layer uses this classification to decide whether a
// stale cache entry may be served instead.
var ErrNoConnection = errors.New("pokeapi: upstream unreachable")

// ErrDecode is returned when an upstream body cannot be decoded into its
// typed response struct.
var ErrDecode = errors.New("pokeapi: malformed upstream response")
