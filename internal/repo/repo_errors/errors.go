package repo_errors

import "errors"

var (
	ErrNotFound          = errors.New("entity not found")
	ErrAlreadyDispatched = errors.New("notification event for this triple already exists")
)
