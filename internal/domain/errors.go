package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the client-visible taxonomy. Anything not wrapping one
// of these is treated as a store/internal fault by the HTTP layer.
var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid request")
)

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}
