package auth

import (
	"fmt"

	"github.com/nerrad567/smartcity-core/internal/infrastructure/config"
)

// DefaultUsers are the demo accounts seeded when no users are configured.
var DefaultUsers = []config.UserConfig{
	{Username: "admin", Password: "admin123", Role: string(RoleAdmin)},
	{Username: "operator", Password: "oper123", Role: string(RoleOperator)},
	{Username: "viewer", Password: "view123", Role: string(RoleViewer)},
}

// SeedUsers registers every configured user, falling back to DefaultUsers
// when the list is empty. It stops at the first failure.
func SeedUsers(store *Store, users []config.UserConfig) error {
	if len(users) == 0 {
		store.logger.Warn("no users configured, seeding demo accounts")
		users = DefaultUsers
	}

	for _, u := range users {
		role, err := ParseRole(u.Role)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", u.Username, err)
		}
		if _, err := store.RegisterUser(u.Username, u.Password, role); err != nil {
			return fmt.Errorf("seeding %s: %w", u.Username, err)
		}
	}

	store.logger.Info("users seeded", "count", len(users))
	return nil
}
