package auth

import (
	"time"

	"github.com/inkwell-app/inkwell/internal/shared"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal derives the request-scoped identity for this user.
func (u *User) Principal() shared.Principal {
	return shared.Principal{SubjectID: u.ID, Role: u.Role}
}

// TokenPair bundles the two credentials returned by login and refresh: a
// short-lived access token for bearer use and a long-lived refresh token
// bound to the server-side session id.
type TokenPair struct {
	Access  string
	Refresh string
}
