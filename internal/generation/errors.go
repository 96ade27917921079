package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrInvalidConfig is returned when the engine configuration is invalid
	ErrInvalidConfig = errors.New("invalid generation configuration")
)
