// Package httpx maps domain errors to HTTP responses.
package httpx

import (
	"errors"
	"net/http"

	"github.com/inkwell-app/inkwell/internal/shared"
)

// Generic boundary messages. Authentication failures deliberately share one
// body regardless of the underlying cause so callers cannot probe for
// account existence or token format details.
const (
	unauthorizedDetail = "authentication required"
	forbiddenDetail    = "insufficient permissions"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// The full error stays server-side; only the coarse class leaks out.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsAuthFailure(err):
		Problem(w, http.StatusUnauthorized, "Unauthorized", unauthorizedDetail)
	case isForbidden(err):
		Problem(w, http.StatusForbidden, "Forbidden", forbiddenDetail)
	case isNotFound(err):
		Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func isForbidden(err error) bool {
	return errors.Is(err, shared.ErrPermissionDenied) || errors.Is(err, shared.ErrNotOwner)
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
