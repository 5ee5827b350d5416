// Package auth provides authentication and role-based authorisation for
// the Smart City control center.
//
// It implements a 3-tier role model (viewer → operator → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Static role-action mapping (compile-time, no lookup tables to seed)
//   - An in-memory user Store satisfying AccessControl
//   - HS256 JWT access tokens carrying the user's identity and role
//
// Authenticate fails closed: any mismatch returns (User{}, false) and the
// caller cannot tell an unknown username from a wrong password.
//
// HasPermission is a resource-level placeholder hook. It permits every
// user and must not be used as a security gate; Authorize is the gate.
package auth
