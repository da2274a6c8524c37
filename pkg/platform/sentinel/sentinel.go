package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services decide what they mean for the visitor:
// - ErrNotFound: no record under the key
// - ErrExpired: a record exists but its trust window has elapsed
// - ErrUnavailable: the backing store or transport cannot be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
