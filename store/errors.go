package store

import "errors"

// Sentinel errors returned by the stores. Controllers map these onto HTTP
// status codes (NotFound, Conflict, Unauthorized).
var (
	ErrTableNotFound   = errors.New("table not found")
	ErrDuplicateTable  = errors.New("table number already exists")
	ErrNoActiveSession = errors.New("no active session found for this table")
	ErrSessionActive   = errors.New("table already has an active session")
	ErrInvalidPin      = errors.New("invalid PIN")
)
