// Package common provides shared constants, types, and utilities
// used across the VNC Viewer application.
package common

import "errors"

// Sentinel errors for bookmark and connection operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Connection descriptor errors.
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrFileLoad            = errors.New("failed to load connection file")
	ErrParse               = errors.New("failed to parse key file")
	ErrMissingHost         = errors.New("connection file has no host")

	// Bookmark store errors.
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrInvalidBookmark  = errors.New("invalid bookmark")
	ErrGroupRemoval     = errors.New("failed to remove bookmark")
	ErrSave             = errors.New("failed to save bookmarks")
	ErrStoreClosed      = errors.New("bookmark store is closed")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrCredentialStorage   = errors.New("failed to store credentials")
	ErrEncryption          = errors.New("encryption error")
	ErrDecryption          = errors.New("decryption error")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")

	// Launcher errors.
	ErrNoViewer       = errors.New("no viewer command configured")
	ErrAlreadyRunning = errors.New("viewer already running for this target")
	ErrNotRunning     = errors.New("no viewer running for this target")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
