package rbac

import "testing"

func TestDefaultMatrixGrants(t *testing.T) {
	m := DefaultMatrix()

	cases := []struct {
		role   string
		action string
		want   bool
	}{
		{RoleViewer, "posts:read", true},
		{RoleViewer, "posts:create", false},
		{RoleViewer, "posts:update", false},
		{RoleViewer, "posts:update:own", false},
		{RoleViewer, "posts:delete", false},
		{RoleViewer, "users:manage", false},

		{RoleEditor, "posts:read", true},
		{RoleEditor, "posts:create", true},
		// The own-qualified grant satisfies the bare action; the route
		// layer enforces ownership of the concrete resource afterwards.
		{RoleEditor, "posts:update", true},
		{RoleEditor, "posts:update:own", true},
		{RoleEditor, "posts:delete", true},
		{RoleEditor, "posts:delete:own", true},
		{RoleEditor, "users:manage", false},

		{RoleAdmin, "posts:read", true},
		{RoleAdmin, "posts:create", true},
		{RoleAdmin, "posts:update", true},
		// Holding the general permission implies the own-scoped variant.
		{RoleAdmin, "posts:update:own", true},
		{RoleAdmin, "posts:delete", true},
		{RoleAdmin, "posts:delete:own", true},
		{RoleAdmin, "users:manage", true},
	}

	for _, tc := range cases {
		if got := m.Allowed(tc.role, tc.action); got != tc.want {
			t.Errorf("Allowed(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestAllowedUnknownRole(t *testing.T) {
	m := DefaultMatrix()
	if m.Allowed("Superuser", "posts:read") {
		t.Fatal("unknown role must hold no grants")
	}
	if m.Allowed("", "posts:read") {
		t.Fatal("empty role must hold no grants")
	}
}

func TestAllowedOwnSuffixDirection(t *testing.T) {
	// A role granted only the own-qualified action passes the bare check,
	// and a role granted only the bare action passes the own-qualified
	// check. The reverse directions must not leak extra grants.
	m := NewMatrix(map[string][]string{
		"scoped":  {"docs:edit:own"},
		"general": {"docs:edit"},
	})

	if !m.Allowed("scoped", "docs:edit") {
		t.Error("own-qualified grant should satisfy the bare action")
	}
	if !m.Allowed("scoped", "docs:edit:own") {
		t.Error("own-qualified grant should satisfy itself")
	}
	if !m.Allowed("general", "docs:edit:own") {
		t.Error("bare grant should satisfy the own-qualified action")
	}
	if m.Allowed("scoped", "docs:delete") {
		t.Error("unrelated action must stay denied")
	}
	if m.Allowed("general", "docs:edit:own:own") {
		t.Error("double-qualified action must not match the bare grant")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleViewer, RoleEditor, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false", role)
		}
	}
	for _, role := range []string{"", "viewer", "admin", "Owner"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true", role)
		}
	}
}
