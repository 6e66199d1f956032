package sdk

import (
	"fmt"
	"strings"
)

// Error represents an API error. The server reports errors through the
// envelope's message and the HTTP status; validation errors additionally
// name the offending fields.
type Error struct {
	HTTPStatus int      `json:"-"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("status: %d, message: %s, fields: %s", e.HTTPStatus, e.Message, strings.Join(e.Fields, ","))
	}
	return fmt.Sprintf("status: %d, message: %s", e.HTTPStatus, e.Message)
}

// IsValidation reports whether the error names invalid request fields
func (e *Error) IsValidation() bool {
	return len(e.Fields) > 0
}

// IsNotFound reports whether the server answered 404
func (e *Error) IsNotFound() bool {
	return e.HTTPStatus == 404
}

// IsForbidden reports whether the server answered 403
func (e *Error) IsForbidden() bool {
	return e.HTTPStatus == 403
}

// IsUnauthorized reports whether the server answered 401
func (e *Error) IsUnauthorized() bool {
	return e.HTTPStatus == 401
}

// IsConflict reports whether the server answered 409
func (e *Error) IsConflict() bool {
	return e.HTTPStatus == 409
}
