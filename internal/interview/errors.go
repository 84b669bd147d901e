package interview

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller mistakes such as an empty context or unknown mode.
var ErrInvalidInput = errors.New("invalid input")

// ServiceUnavailableError is returned when the language model could not be reached
// after every retry. Callers should ask the user to try again later.
type ServiceUnavailableError struct {
	Op  string
	Err error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s: ai service unavailable, try again later: %v", e.Op, e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

// ParseError is returned when the model answered but the answer is not the
// structured data that was requested.
type ParseError struct {
	Op  string
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unexpected ai response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsServiceUnavailable reports whether err carries a ServiceUnavailableError.
func IsServiceUnavailable(err error) bool {
	var target *ServiceUnavailableError
	return errors.As(err, &target)
}

// IsParseError reports whether err carries a ParseError.
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}
