package shared

import "errors"

// Authentication-stage failures. All of these collapse to a single generic
// unauthorized response at the HTTP boundary; the distinctions exist for
// audit records and operator diagnosis only.
var (
	// ErrNoCredential indicates no credential was presented at all.
	ErrNoCredential = errors.New("no credential presented")
	// ErrInvalidCredentials indicates login failure. Unknown identifier and
	// wrong secret intentionally share this value.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid indicates a malformed token or bad signature.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired indicates a well-signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrSubjectNotFound indicates a token for an account that no longer exists.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrReuseDetected indicates a refresh token replayed after rotation.
	ErrReuseDetected = errors.New("refresh token reuse detected")
)

// Authorization-stage failures. These surface as forbidden; the subject is
// known and the lack of a permission is not sensitive information.
var (
	// ErrPermissionDenied indicates the role does not grant the action.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotOwner indicates the subject does not own the target resource.
	ErrNotOwner = errors.New("not resource owner")
)

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("not found")

// IsAuthFailure reports whether err belongs to the authentication stage.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrNoCredential) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrReuseDetected)
}
