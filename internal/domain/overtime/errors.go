package overtime

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid overtime input")
	ErrCalculationNotFound = errors.New("calculation not found")
)

// FieldError names the offending field of an invalid calculation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}
