package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Role represents an authorisation tier.
type Role string

const (
	// RoleAdmin controls everything, including configuration and device removal.
	RoleAdmin Role = "admin"

	// RoleOperator runs the city day to day: start/stop subsystems and add devices.
	RoleOperator Role = "operator"

	// RoleViewer can only observe.
	RoleViewer Role = "viewer"
)

// ValidRoles is the set of valid roles.
var ValidRoles = []Role{RoleAdmin, RoleOperator, RoleViewer}

// ParseRole converts a string to a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range ValidRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// User represents an authenticated account. The password hash is kept by
// the Store and never leaves it.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsZero reports whether u is the empty user returned on failed lookups.
func (u User) IsZero() bool {
	return u.ID == ""
}

// AccessControl authenticates users and authorises their actions.
type AccessControl interface {
	// Authenticate returns the user for valid credentials. It never
	// reveals whether the username exists.
	Authenticate(username, password string) (User, bool)

	// Authorize reports whether the user's role grants the action.
	// Unknown actions are denied.
	Authorize(u User, action Action) bool

	// HasPermission is a coarse resource-level hook. It currently permits
	// everyone and is not a security boundary.
	HasPermission(u User, resource string) bool
}

// Sentinel errors for auth operations.
var (
	ErrUsernameExists  = errors.New("auth: username already exists")
	ErrInvalidUsername = errors.New("auth: invalid username")
	ErrInvalidRole     = errors.New("auth: invalid role")
	ErrEmptyPassword   = errors.New("auth: empty password")
	ErrInvalidHash     = errors.New("auth: invalid password hash")
	ErrTokenInvalid    = errors.New("auth: invalid token")
	ErrNoSecret        = errors.New("auth: signing secret is empty")
)
