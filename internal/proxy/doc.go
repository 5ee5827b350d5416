// Package proxy wraps subsystems with cross-cutting concerns while keeping
// the subsystem.Subsystem contract intact.
//
// Three stages exist:
//
//   - Protection authenticates one session and authorises every call
//     against auth.AccessControl. Denied mutations return ErrAccessDenied;
//     denied reads degrade to "Access denied" or an empty device list.
//   - Logging records every call (method and serialised arguments) before
//     forwarding. It never alters results.
//   - Caching memoises Status and Devices with per-key TTLs and flushes on
//     every mutation.
//
// Stages are plain middleware over the Subsystem interface:
//
//	s := proxy.Chain(base,
//	    proxy.ProtectionStage(ac),
//	    proxy.CachingStage(),
//	    proxy.LoggingStage(),
//	)
//
// The first stage listed is outermost. Compose assembles the standard
// order (protection, caching, logging, real subsystem) and returns handles
// to each layer, so a denied call is recorded in the access log but never
// populates the cache or the method log.
package proxy
