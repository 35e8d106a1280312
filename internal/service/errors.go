package service

import "errors"

// ValidationError is an expected, recoverable business condition (invalid
// transition, empty balance, unknown record). Handlers show its message to
// the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConfigError means an operator has to fix the application settings before
// the operation can succeed. Surfaced distinctly from validation errors so
// callers alert an operator rather than a user.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func NewConfigError(message string) error {
	return &ConfigError{Message: message}
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
