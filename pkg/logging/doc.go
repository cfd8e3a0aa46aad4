// Package logging provides structured logging for remotemcp with unified
// log handling and level filtering.
//
// The package wraps Go's standard slog package. Every entry carries a
// subsystem identifier so that logs from the OAuth core, the identity
// provider, the tool layer, and the HTTP surface can be filtered apart:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Bootstrap", "Server starting on %s", addr)
//	logging.Debug("OAuth", "Issued code for user=%s client=%s", userID, clientID)
//	logging.Error("Identity", err, "Credential verification failed")
//
// Subsystems in use: Bootstrap, Config, OAuth, Identity, Tools, MCP, HTTP,
// Audit.
package logging
