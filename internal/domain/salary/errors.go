package salary

import "errors"

var ErrInvalidInput = errors.New("invalid salary input")
