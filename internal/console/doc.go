// Package console is the operator command loop of the control center.
//
// It reads one command per line, dispatches it against the controller, the
// proxy chains and the domain modules, and writes the rendered result. A
// session looks like:
//
//	> login security admin admin123
//	> start
//	> devices security
//	> alerts
//	> quit
//
// Commands that target a subsystem take its category (transport, lighting,
// security, energy) as the first argument and always go through the
// registered proxy chain, so access control and caching apply to the
// console exactly as to any other client.
package console
