package store

import "errors"

var (
	// ErrNotFound reports a referenced project, task or subtask id that does
	// not exist at its scope.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate reports an attempted creation with an id already present
	// at that scope.
	ErrDuplicate = errors.New("already exists")

	// ErrValidation reports a malformed payload or an update touching a
	// field that cannot be changed through the generic update path.
	ErrValidation = errors.New("validation failed")
)
