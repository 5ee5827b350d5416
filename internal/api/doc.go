// Package api implements the read-mostly HTTP status API of the Smart City
// control center.
//
// This package provides:
//   - Health, system status and configuration endpoints
//   - Subsystem listing, inspection and start/stop through the proxy chain
//   - Alert listing and acknowledgement
//   - Event trail and persisted audit log queries
//
// # Access Control
//
// POST /auth/login exchanges credentials for an HS256 bearer token.
// Start, stop and alert acknowledgement require a token; reads accept one.
//
// Each request acts as its token's user. On a protected subsystem the
// request gets its own session on the protection proxy, so decisions land
// in the shared access log under that user and a console login is never
// borrowed. Anonymous reads see the denied placeholder. Unprotected
// subsystems are gated on the token's role before the call.
//
// The server follows the same lifecycle as the infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
