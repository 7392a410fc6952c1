package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/inkwell-app/inkwell/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthedEcho(codec *Codec, audit shared.AuditEmitter) http.Handler {
	mw := Middleware{Codec: codec, Audit: audit, Logger: discardLogger()}
	return mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := shared.PrincipalFromContext(r.Context())
		if !ok {
			http.Error(w, "no principal", http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-Role", p.Role)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthenticateValidToken(t *testing.T) {
	codec := testCodec()
	handler := newAuthedEcho(codec, nil)

	token, err := codec.IssueAccess(42, "Editor")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Role"); got != "Editor" {
		t.Errorf("role = %q, want Editor", got)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	codec := testCodec()

	expired := NewCodec("test-secret-0123456789", time.Hour, time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	expired.now = func() time.Time { return issued }
	expiredToken, err := expired.IssueAccess(42, "Editor")
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	refreshToken, err := codec.IssueRefresh(42, "Editor", "sid-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expiredToken},
		{"refresh token on bearer", "Bearer " + refreshToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newAuthedEcho(codec, nil)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			// The body never says which check failed.
			if !strings.Contains(rec.Body.String(), "authentication required") {
				t.Errorf("body = %s, want generic unauthorized detail", rec.Body.String())
			}
		})
	}
}

func TestAuthenticateAuditOutcomes(t *testing.T) {
	codec := testCodec()
	audit := &recordingEmitter{}
	handler := newAuthedEcho(codec, audit)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := audit.lastOutcome(t); got != shared.OutcomeNoToken {
		t.Errorf("no-token outcome = %q, want %q", got, shared.OutcomeNoToken)
	}

	token, err := codec.IssueAccess(42, "Editor")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	last := audit.events[len(audit.events)-1]
	if last.Outcome != shared.OutcomeSuccess || last.Subject != "42" || last.Role != "Editor" {
		t.Errorf("success event = %+v", last)
	}
}
