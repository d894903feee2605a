package client

import "errors"

// Client-side view of the server's error taxonomy, mapped from HTTP status
// codes. ErrNotFound and ErrUnauthorized on a tray load mean the local
// session cache must be discarded, not retried.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid request")
)
