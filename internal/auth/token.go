package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkwell-app/inkwell/internal/shared"
)

// Token kinds. Verification rejects a token presented as the wrong kind so a
// refresh token can never be replayed on the bearer header and vice versa.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims is the signed claim set carried by both token kinds. Refresh tokens
// additionally carry the session id they are chained to.
type Claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	Kind      string `json:"kind"`
	SessionID string `json:"sid,omitempty"`
}

// SubjectID parses the registered subject claim.
func (c Claims) SubjectID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, shared.ErrTokenInvalid
	}
	return id, nil
}

// Codec signs and verifies token claim sets with a single process-wide
// HMAC-SHA256 key. The key is loaded once at startup and never rotated at
// runtime; key rotation is a known limitation of this design.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewCodec constructs a Codec.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess signs a stateless access token for the subject.
func (c *Codec) IssueAccess(subjectID int64, role string) (string, error) {
	return c.sign(subjectID, role, KindAccess, "", c.accessTTL)
}

// IssueRefresh signs a refresh token chained to the given session id.
func (c *Codec) IssueRefresh(subjectID int64, role, sessionID string) (string, error) {
	return c.sign(subjectID, role, KindRefresh, sessionID, c.refreshTTL)
}

// RefreshTTL exposes the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// Verify checks signature integrity, expiry, and token kind. An expired but
// well-signed token fails with shared.ErrTokenExpired; every other failure
// maps to shared.ErrTokenInvalid.
func (c *Codec) Verify(token, kind string) (Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, shared.ErrTokenExpired
		}
		return Claims{}, shared.ErrTokenInvalid
	}
	if !parsed.Valid || claims.Kind != kind {
		return Claims{}, shared.ErrTokenInvalid
	}
	return *claims, nil
}

func (c *Codec) sign(subjectID int64, role, kind, sessionID string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      role,
		Kind:      kind,
		SessionID: sessionID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *Codec) keyFunc(token *jwt.Token) (any, error) {
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, shared.ErrTokenInvalid
	}
	return c.secret, nil
}
