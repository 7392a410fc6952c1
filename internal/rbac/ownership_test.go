package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-app/inkwell/internal/shared"
)

type stubLookup struct {
	owners map[int64]int64
	calls  int
}

func (s *stubLookup) Owner(_ context.Context, resourceID int64) (int64, error) {
	s.calls++
	owner, ok := s.owners[resourceID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return owner, nil
}

type captureEmitter struct {
	events []shared.AuditEvent
}

func (c *captureEmitter) Emit(_ context.Context, event shared.AuditEvent) {
	c.events = append(c.events, event)
}

func (c *captureEmitter) last(t *testing.T) shared.AuditEvent {
	t.Helper()
	require.NotEmpty(t, c.events)
	return c.events[len(c.events)-1]
}

func TestAuthorizeOwner(t *testing.T) {
	lookup := &stubLookup{owners: map[int64]int64{10: 7}}
	audit := &captureEmitter{}
	resolver := NewOwnershipResolver(lookup, audit)

	editor := shared.Principal{SubjectID: 7, Role: RoleEditor}

	err := resolver.Authorize(context.Background(), editor, 10)
	require.NoError(t, err)
	assert.Equal(t, shared.OutcomeSuccess, audit.last(t).Outcome)
	assert.Equal(t, "ownership:check", audit.last(t).Action)
	assert.Equal(t, "7", audit.last(t).Subject)
}

func TestAuthorizeNotOwner(t *testing.T) {
	lookup := &stubLookup{owners: map[int64]int64{10: 7, 11: 8}}
	audit := &captureEmitter{}
	resolver := NewOwnershipResolver(lookup, audit)

	editor := shared.Principal{SubjectID: 7, Role: RoleEditor}

	err := resolver.Authorize(context.Background(), editor, 11)
	require.ErrorIs(t, err, shared.ErrNotOwner)
	assert.Equal(t, shared.OutcomeNoOwnership, audit.last(t).Outcome)
	assert.EqualValues(t, 11, audit.last(t).Meta["resource_id"])
}

func TestAuthorizeMissingResource(t *testing.T) {
	lookup := &stubLookup{}
	audit := &captureEmitter{}
	resolver := NewOwnershipResolver(lookup, audit)

	editor := shared.Principal{SubjectID: 7, Role: RoleEditor}

	err := resolver.Authorize(context.Background(), editor, 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, shared.OutcomeNotFound, audit.last(t).Outcome)
}

func TestAuthorizeAdminBypassSkipsLookup(t *testing.T) {
	lookup := &stubLookup{owners: map[int64]int64{10: 7}}
	audit := &captureEmitter{}
	resolver := NewOwnershipResolver(lookup, audit)

	admin := shared.Principal{SubjectID: 1, Role: RoleAdmin}

	err := resolver.Authorize(context.Background(), admin, 10)
	require.NoError(t, err)
	assert.Zero(t, lookup.calls, "admin bypass must not touch the owner lookup")
	assert.Equal(t, shared.OutcomeAdminBypass, audit.last(t).Outcome)

	// The bypass applies even to resources that do not exist.
	err = resolver.Authorize(context.Background(), admin, 404)
	require.NoError(t, err)
	assert.Zero(t, lookup.calls)
}

func TestAuthorizeLookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	audit := &captureEmitter{}
	resolver := NewOwnershipResolver(failingLookup{err: boom}, audit)

	editor := shared.Principal{SubjectID: 7, Role: RoleEditor}

	err := resolver.Authorize(context.Background(), editor, 10)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, shared.OutcomeError, audit.last(t).Outcome)
}

type failingLookup struct{ err error }

func (f failingLookup) Owner(context.Context, int64) (int64, error) {
	return 0, f.err
}
