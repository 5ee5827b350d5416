// Package logging provides structured logging for the Smart City core.
//
// It wraps log/slog so every component logs with the same handler, level
// filter and default fields (service, version).
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// The interactive console owns stdout, so the default output is stderr.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("subsystem started", "subsystem", "Street Lighting")
//
// Never log passwords or API keys. Usernames are fine.
package logging
