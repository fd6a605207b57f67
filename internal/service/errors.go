package service

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrUnknownTemplate  = errors.New("unknown alert template")
	ErrInvalidFrequency = errors.New("frequency must be one of: instant, daily, weekly")
)

// InvalidProfileError carries the field-level reason a profile save was
// rejected. It is the only scoring-adjacent failure the end user ever sees.
type InvalidProfileError struct {
	Field  string
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile: '%s': %s", e.Field, e.Reason)
}
