package rbac

import "strings"

// Role names form a fixed enumeration. Roles carry no ordering; each is an
// opaque key into the permission matrix.
const (
	RoleViewer = "Viewer"
	RoleEditor = "Editor"
	RoleAdmin  = "Admin"
)

// OwnSuffix marks an action as restricted to resources the subject owns.
const OwnSuffix = ":own"

// ValidRole reports whether name is one of the known roles.
func ValidRole(name string) bool {
	switch name {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// Matrix maps a role to the set of actions it is permitted to perform.
// It is built once at process start and never mutated afterwards; role or
// action changes ship as new configuration, not runtime writes.
type Matrix map[string]map[string]struct{}

// NewMatrix builds a Matrix from role → action grants.
func NewMatrix(grants map[string][]string) Matrix {
	m := make(Matrix, len(grants))
	for role, actions := range grants {
		set := make(map[string]struct{}, len(actions))
		for _, action := range actions {
			set[action] = struct{}{}
		}
		m[role] = set
	}
	return m
}

// DefaultMatrix returns the built-in role grants.
func DefaultMatrix() Matrix {
	return NewMatrix(map[string][]string{
		RoleViewer: {"posts:read"},
		RoleEditor: {"posts:read", "posts:create", "posts:update:own", "posts:delete:own"},
		RoleAdmin:  {"posts:read", "posts:create", "posts:update", "posts:delete", "users:manage"},
	})
}

// Allowed decides whether role may perform action. Matching, in order:
//
//  1. the grant set contains action verbatim;
//  2. action is not own-qualified and the set contains the own-qualified
//     variant (the grant still applies, ownership is checked separately);
//  3. action is own-qualified and the set contains the bare base action
//     (holding the general permission implies the own-scoped one).
//
// The direction of rules 2 and 3 is a pinned contract; see the package tests.
func (m Matrix) Allowed(role, action string) bool {
	grants, ok := m[role]
	if !ok {
		return false
	}
	if _, ok := grants[action]; ok {
		return true
	}
	if !strings.HasSuffix(action, OwnSuffix) {
		if _, ok := grants[action+OwnSuffix]; ok {
			return true
		}
		return false
	}
	_, ok = grants[strings.TrimSuffix(action, OwnSuffix)]
	return ok
}
