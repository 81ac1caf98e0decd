package tools

import (
	"errors"
	"fmt"
	"os"
)

// Error kinds surfaced to the model as tool results. None of these are
// fatal to the process; the conversation loop renders them and continues.
var (
	ErrToolNotFound     = errors.New("tool not found")
	ErrFileNotFound     = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotADirectory    = errors.New("not a directory")
	ErrIsADirectory     = errors.New("is a directory")
)

// classifyPathError maps an error from the os package to one of the
// tool error kinds, keeping the original error as context.
func classifyPathError(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	default:
		return fmt.Errorf("io error on %s: %w", path, err)
	}
}
