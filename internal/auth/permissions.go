package auth

import "slices"

// Action is an operation a user may attempt against a subsystem.
type Action string

// Action constants.
const (
	ActionRead      Action = "read"
	ActionWrite     Action = "write"
	ActionDelete    Action = "delete"
	ActionConfigure Action = "configure"
	ActionStart     Action = "start"
	ActionStop      Action = "stop"
)

// AllActions returns every known action.
func AllActions() []Action {
	return []Action{ActionRead, ActionWrite, ActionDelete, ActionConfigure, ActionStart, ActionStop}
}

// rolePermissions maps each role to its granted actions.
// This is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Action{
	RoleAdmin: {
		ActionRead,
		ActionWrite,
		ActionDelete,
		ActionConfigure,
		ActionStart,
		ActionStop,
	},
	RoleOperator: {
		ActionRead,
		ActionWrite,
		ActionStart,
		ActionStop,
	},
	RoleViewer: {
		ActionRead,
	},
}

// RoleAllows returns true if the role grants the action. Unknown roles and
// unknown actions are denied.
func RoleAllows(role Role, action Action) bool {
	return slices.Contains(rolePermissions[role], action)
}

// PermissionsForRole returns all actions granted to a role.
// Returns nil for unknown roles.
func PermissionsForRole(role Role) []Action {
	return slices.Clone(rolePermissions[role])
}
