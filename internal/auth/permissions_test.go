package auth

import "testing"

func TestRoleAllows(t *testing.T) {
	want := map[Role]map[Action]bool{
		RoleAdmin: {
			ActionRead: true, ActionWrite: true, ActionDelete: true,
			ActionConfigure: true, ActionStart: true, ActionStop: true,
		},
		RoleOperator: {
			ActionRead: true, ActionWrite: true, ActionStart: true, ActionStop: true,
		},
		RoleViewer: {
			ActionRead: true,
		},
	}

	for _, role := range ValidRoles {
		for _, action := range AllActions() {
			if got := RoleAllows(role, action); got != want[role][action] {
				t.Errorf("RoleAllows(%s, %s) = %v, want %v", role, action, got, want[role][action])
			}
		}
	}
}

func TestRoleAllows_UnknownActionDenied(t *testing.T) {
	for _, role := range ValidRoles {
		for _, action := range []Action{"launch", "", "READ", "admin"} {
			if RoleAllows(role, action) {
				t.Errorf("RoleAllows(%s, %q) = true, want false", role, action)
			}
		}
	}
}

func TestRoleAllows_UnknownRoleDenied(t *testing.T) {
	if RoleAllows("mayor", ActionRead) {
		t.Error("unknown role should be denied")
	}
}

func TestPermissionsForRole(t *testing.T) {
	perms := PermissionsForRole(RoleOperator)
	if len(perms) != 4 {
		t.Fatalf("operator permissions = %v, want 4 actions", perms)
	}

	// Returned slice is a copy.
	perms[0] = ActionDelete
	if RoleAllows(RoleOperator, ActionDelete) {
		t.Error("mutating PermissionsForRole() result changed the permission map")
	}

	if PermissionsForRole("mayor") != nil {
		t.Error("unknown role should return nil")
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range ValidRoles {
		if got, err := ParseRole(string(r)); err != nil || got != r {
			t.Errorf("ParseRole(%q) = %q, %v", r, got, err)
		}
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Error("ParseRole(owner) expected error")
	}
}
