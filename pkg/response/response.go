package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/openhrm/pulse/pkg/errcode"
)

// Response is the envelope every endpoint returns.
// Success: {"status":"success","data":...}
// Error:   {"status":"error","message":"...","fields":[...]}
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Fields  []string    `json:"fields,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Success sends a success response
func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: StatusSuccess,
		Data:   data,
	})
}

// Error sends an error response. Business errors carry their own HTTP
// status; anything else is a 500.
func Error(ctx context.Context, c *app.RequestContext, err error) {
	if e, ok := err.(*errcode.Error); ok {
		c.JSON(e.HTTPStatus, Response{
			Status:  StatusError,
			Message: e.Msg,
			Fields:  e.Fields,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Status:  StatusError,
		Message: err.Error(),
	})
}

// ErrorWithCode sends an error response for a specific business error
func ErrorWithCode(ctx context.Context, c *app.RequestContext, e *errcode.Error) {
	c.JSON(e.HTTPStatus, Response{
		Status:  StatusError,
		Message: e.Msg,
		Fields:  e.Fields,
	})
}

// Invalid sends a validation error naming the offending fields
func Invalid(ctx context.Context, c *app.RequestContext, fields ...string) {
	ErrorWithCode(ctx, c, errcode.ErrInvalidParam.WithFields(fields...))
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(ctx context.Context, c *app.RequestContext, msg string) {
	if msg == "" {
		msg = "unauthorized"
	}
	c.JSON(http.StatusUnauthorized, Response{
		Status:  StatusError,
		Message: msg,
	})
}
