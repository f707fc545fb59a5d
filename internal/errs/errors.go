package errs

import (
	"errors"
	"fmt"
)

// Category errors for supervisor, file mutation and store operations.
// API handlers translate these into HTTP status codes with errors.Is.
var (
	ErrNotFound           = errors.New("server not found")
	ErrConflict           = errors.New("conflicting state")
	ErrValidation         = errors.New("validation failed")
	ErrExecutableNotFound = errors.New("server executable not found")
	ErrSpawn              = errors.New("failed to spawn server process")
	ErrRconNotConnected   = errors.New("rcon not connected")
	ErrRconProtocol       = errors.New("rcon protocol error")
	ErrFileIO             = errors.New("file operation failed")
)

// Wrap attaches a category error to a formatted detail message so callers can
// match the category while keeping the context.
func Wrap(category error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", category, fmt.Sprintf(format, args...))
}
