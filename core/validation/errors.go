package validation

import (
	"errors"
	"fmt"
)

// MissingFieldError reports a required key absent from the request.
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Path)
}

// InvalidTypeError reports a field present with the wrong kind of value.
type InvalidTypeError struct {
	Path string
	Want string
	Got  string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("field %q must be %s, got %s", e.Path, e.Want, e.Got)
}

// InvalidValueError reports a well-typed value outside its allowed range.
type InvalidValueError struct {
	Path   string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("field %q is invalid: %s", e.Path, e.Reason)
}

// Error codes reported at the transport boundary.
const (
	CodeMissingField = "MISSING_FIELD"
	CodeInvalidType  = "INVALID_TYPE"
	CodeInvalidValue = "INVALID_VALUE"
)

// Classify returns the code and field path of a validation error. ok is false
// for errors that did not come from Validate.
func Classify(err error) (code, path string, ok bool) {
	var missing *MissingFieldError
	var typ *InvalidTypeError
	var val *InvalidValueError
	switch {
	case errors.As(err, &missing):
		return CodeMissingField, missing.Path, true
	case errors.As(err, &typ):
		return CodeInvalidType, typ.Path, true
	case errors.As(err, &val):
		return CodeInvalidValue, val.Path, true
	}
	return "", "", false
}
