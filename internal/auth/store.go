package auth

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// account pairs a user with its password hash.
type account struct {
	user User
	hash string
}

// Store is an in-memory AccessControl. Users live for the process lifetime.
//
// All public methods are thread-safe.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]account // keyed by username
	logger   Logger
	now      func() time.Time
}

var _ AccessControl = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]account),
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// RegisterUser adds a user with a hashed password.
func (s *Store) RegisterUser(username, password string, role Role) (User, error) {
	if !IsValidUsername(username) {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	if !slices.Contains(ValidRoles, role) {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if password == "" {
		return User{}, ErrEmptyPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hashing password for %s: %w", username, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[username]; exists {
		return User{}, fmt.Errorf("%w: %s", ErrUsernameExists, username)
	}

	u := User{
		ID:        uuid.NewString(),
		Username:  username,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	s.accounts[username] = account{user: u, hash: hash}

	s.logger.Info("user registered", "username", username, "role", role)
	return u, nil
}

// Authenticate verifies credentials. Unknown usernames are checked against a
// dummy hash so both failure modes take the same time.
func (s *Store) Authenticate(username, password string) (User, bool) {
	s.mu.RLock()
	acc, found := s.accounts[username]
	s.mu.RUnlock()

	hash := acc.hash
	if !found {
		hash = dummyHash()
	}

	ok, err := VerifyPassword(password, hash)
	if err != nil {
		s.logger.Error("verifying password", "username", username, "error", err)
		return User{}, false
	}
	if !ok || !found {
		s.logger.Debug("authentication failed", "username", username)
		return User{}, false
	}
	return acc.user, true
}

// Authorize reports whether the role of u grants action. Only the role is
// consulted, so a User built from verified token claims authorises the same
// way as one returned by Authenticate.
func (s *Store) Authorize(u User, action Action) bool {
	return RoleAllows(u.Role, action)
}

// HasPermission always permits. Resource-level rules are not modelled yet.
func (s *Store) HasPermission(u User, resource string) bool {
	s.logger.Debug("permissive resource check", "username", u.Username, "resource", resource)
	return true
}

// User returns the account registered under username.
func (s *Store) User(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[username]
	return acc.user, ok
}

// Users returns every account sorted by username.
func (s *Store) Users() []User {
	s.mu.RLock()
	users := make([]User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	s.mu.RUnlock()

	slices.SortFunc(users, func(a, b User) int { return cmp.Compare(a.Username, b.Username) })
	return users
}

// Count returns the number of registered users.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
