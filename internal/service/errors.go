package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service layer. Front ends map these onto
// their wire formats (HTTP 400/404, MCP error results).
var (
	// ErrNotFound indicates an unknown job id or node id.
	ErrNotFound = errors.New("not found")
)

// ValidationError rejects a request before any side effect occurs.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Msg)
	}
	return "invalid request: " + e.Msg
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func missingField(field string) error {
	return &ValidationError{Field: field, Msg: "required field is missing"}
}
