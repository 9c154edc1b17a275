package sentiment

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks input rejected before classification: blank text, or a
	// CSV without a text column.
	ErrInput = errors.New("invalid input")

	// ErrModelUnavailable marks a classifier that failed to initialize or
	// failed during inference. It is never mapped to a default rating.
	ErrModelUnavailable = errors.New("sentiment model unavailable")

	// ErrParse marks a model label that cannot be read as a star count.
	ErrParse = errors.New("unparseable sentiment label")

	// ErrValidation marks a model output outside its contract, such as a
	// score outside [0,1].
	ErrValidation = errors.New("invalid sentiment output")
)

type ParseError struct {
	Label string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q", ErrParse, e.Label)
}

func (e *ParseError) Unwrap() error { return ErrParse }

type ValidationError struct {
	Field string
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s=%v", ErrValidation, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ModelError carries the backend name and the underlying cause of a model
// failure. errors.Is(err, ErrModelUnavailable) holds for every ModelError.
type ModelError struct {
	Backend string
	Err     error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrModelUnavailable, e.Backend, e.Err)
}

func (e *ModelError) Unwrap() []error { return []error{ErrModelUnavailable, e.Err} }

func Unavailable(backend string, err error) error {
	return &ModelError{Backend: backend, Err: err}
}

// InputError wraps ErrInput with a user-facing message.
func InputError(msg string) error {
	return fmt.Errorf("%w: %s", ErrInput, msg)
}
