// Package common provides shared constants, types, utilities and interfaces
// used throughout the VNC Viewer application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: application names, file locations, connection defaults
//   - Errors: sentinel errors for the connection parser and bookmark store
//   - Interfaces: abstractions for credential storage, notifications and logging
//   - Logger: leveled logging on top of zap with size-based file rotation
//   - Utils: configuration paths and atomic file writes
//
// # Usage
//
//	// Use logger
//	common.LogInfo("Opening %s", conn.BestName())
//
//	// Check errors
//	if errors.Is(err, common.ErrUnsupportedProtocol) {
//	    // Show the parser message to the user
//	}
package common
