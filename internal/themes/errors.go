package themes

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidThemeKey   = errors.New("invalid theme key")
	ErrThemeAvailability = errors.New("theme availability violation")
	ErrProjectNotFound   = errors.New("project not found")
)

// ValidationError rejects an enabled-themes change or a theme selection that
// would break the allow-list rules. It unwraps to ErrThemeAvailability.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrThemeAvailability
}

func availabilityError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func invalidThemeKey(key string) error {
	return fmt.Errorf("%w: %q", ErrInvalidThemeKey, key)
}
