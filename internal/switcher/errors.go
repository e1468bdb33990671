package switcher

import "errors"

// Domain errors for the switcher package.
var (
	// ErrInvalidField is returned when a field number is not positive.
	ErrInvalidField = errors.New("switcher: field number must be positive")

	// ErrEmptyScene is returned when a scene name is empty or blank.
	ErrEmptyScene = errors.New("switcher: scene name must not be empty")
)
