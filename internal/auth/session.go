package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// rotateScript performs the compare-and-rotate step atomically on the Redis
// side. A matching session id is replaced by the next one; any mismatch
// (including no session at all) clears the key so the whole refresh chain
// dies. Running this as one script is what keeps two concurrent refreshes
// with the same token from both succeeding.
var rotateScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
redis.call("DEL", KEYS[1])
return 0
`)

// SessionStore tracks the single live refresh-session id per subject in
// Redis. Keys expire with the refresh token lifetime; an absent key means no
// valid refresh chain exists.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Start records sessionID as the subject's only live session, overwriting
// any previous one. A second login deliberately invalidates the first.
func (s *SessionStore) Start(ctx context.Context, subjectID int64, sessionID string) error {
	if err := s.client.Set(ctx, s.key(subjectID), sessionID, s.ttl).Err(); err != nil {
		return fmt.Errorf("auth: start session: %w", err)
	}
	return nil
}

// Rotate atomically replaces the subject's session id with next when the
// stored value equals presented. On any mismatch it clears the session and
// reports false: the caller must treat that as reuse detection.
func (s *SessionStore) Rotate(ctx context.Context, subjectID int64, presented, next string) (bool, error) {
	ok, err := rotateScript.Run(ctx, s.client,
		[]string{s.key(subjectID)},
		presented, next, s.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("auth: rotate session: %w", err)
	}
	return ok == 1, nil
}

// Clear removes the subject's session. Clearing an absent session is a no-op.
func (s *SessionStore) Clear(ctx context.Context, subjectID int64) error {
	if err := s.client.Del(ctx, s.key(subjectID)).Err(); err != nil {
		return fmt.Errorf("auth: clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(subjectID int64) string {
	return fmt.Sprintf("session:refresh:%d", subjectID)
}
