package controllers

import (
	"errors"
	"net/http"

	"github.com/yeremiapane/table-sync-app/store"
)

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

var ErrMissingTablePin = &CustomError{"table number and PIN are required"}

// statusForStoreError maps store sentinels onto the HTTP taxonomy:
// NotFound 404, Conflict 409, Unauthorized 401, everything else 500.
func statusForStoreError(err error) int {
	switch {
	case errors.Is(err, store.ErrTableNotFound), errors.Is(err, store.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateTable), errors.Is(err, store.ErrSessionActive):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidPin):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
