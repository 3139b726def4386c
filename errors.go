package curachef

import "errors"

// Error taxonomy. Every component converts failures into one of these kinds
// before they cross into the session state machine; the state machine never
// sees raw transport errors.

// ValidationError is a pre-boundary rejection: missing input, missing
// sign-in, missing required selection. Never retried, shown inline.
type ValidationError struct {
	Reason string
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// GenerationError means the boundary call failed, returned an unparseable
// payload, or the stream ended without valid JSON. The message is user
// visible; the wrapped cause is for logs.
type GenerationError struct {
	Message string
	err     error
}

func NewGenerationError(message string, err error) error {
	return &GenerationError{Message: message, err: err}
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.err
}

// AuthError is confined to the authentication flow (credential mismatch,
// sign-up email collision) and does not affect generation state.
type AuthError struct {
	Reason string
}

func NewAuthError(reason string) error {
	return &AuthError{Reason: reason}
}

func (e *AuthError) Error() string {
	return e.Reason
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsGeneration returns true if the error is a GenerationError.
func IsGeneration(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// IsAuth returns true if the error is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
