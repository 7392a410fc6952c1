package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/inkwell-app/inkwell/internal/shared"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{shared.ErrNoCredential, http.StatusUnauthorized, "authentication required"},
		{shared.ErrInvalidCredentials, http.StatusUnauthorized, "authentication required"},
		{shared.ErrTokenInvalid, http.StatusUnauthorized, "authentication required"},
		{shared.ErrTokenExpired, http.StatusUnauthorized, "authentication required"},
		{shared.ErrSubjectNotFound, http.StatusUnauthorized, "authentication required"},
		{shared.ErrReuseDetected, http.StatusUnauthorized, "authentication required"},
		{shared.ErrPermissionDenied, http.StatusForbidden, "insufficient permissions"},
		{shared.ErrNotOwner, http.StatusForbidden, "insufficient permissions"},
		{shared.ErrNotFound, http.StatusNotFound, "resource not found"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		if rec.Code != tc.status {
			t.Errorf("RespondError(%v) status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		if tc.detail != "" && !strings.Contains(rec.Body.String(), tc.detail) {
			t.Errorf("RespondError(%v) body = %s, want detail %q", tc.err, rec.Body.String(), tc.detail)
		}
	}
}

func TestUnauthorizedBodiesDoNotLeakCause(t *testing.T) {
	authErrs := []error{
		shared.ErrNoCredential,
		shared.ErrInvalidCredentials,
		shared.ErrTokenInvalid,
		shared.ErrTokenExpired,
		shared.ErrSubjectNotFound,
		shared.ErrReuseDetected,
	}

	var first string
	for i, err := range authErrs {
		rec := httptest.NewRecorder()
		RespondError(rec, err)
		if i == 0 {
			first = rec.Body.String()
			continue
		}
		if rec.Body.String() != first {
			t.Fatalf("body for %v differs from the shared unauthorized body", err)
		}
	}
}

func TestRespondErrorInternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("dial tcp 10.0.0.5:5432: timeout"))

	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("internal error detail leaked: %s", rec.Body.String())
	}
}
