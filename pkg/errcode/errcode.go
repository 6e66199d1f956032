package errcode

import (
	"fmt"
	"net/http"
)

// Error represents a business error
type Error struct {
	Code       int      `json:"code"`
	Msg        string   `json:"msg"`
	HTTPStatus int      `json:"-"`
	Fields     []string `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("errcode: %d, msg: %s", e.Code, e.Msg)
}

// New creates a new error with code and message, served as HTTP 500
func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg, HTTPStatus: http.StatusInternalServerError}
}

// NewWithStatus creates a new error with an explicit HTTP status
func NewWithStatus(code, status int, msg string) *Error {
	return &Error{Code: code, Msg: msg, HTTPStatus: status}
}

// Wrap wraps an error with additional context
func (e *Error) Wrap(err error) *Error {
	if err == nil {
		return e
	}
	return &Error{
		Code:       e.Code,
		Msg:        fmt.Sprintf("%s: %v", e.Msg, err),
		HTTPStatus: e.HTTPStatus,
	}
}

// WithFields attaches the names of invalid request fields (validation errors)
func (e *Error) WithFields(fields ...string) *Error {
	return &Error{
		Code:       e.Code,
		Msg:        e.Msg,
		HTTPStatus: e.HTTPStatus,
		Fields:     fields,
	}
}

// Common error codes
var (
	// Common errors (1xxx)
	ErrInvalidParam    = NewWithStatus(1001, http.StatusBadRequest, "invalid parameter")
	ErrInternalServer  = New(1002, "internal server error")
	ErrUnauthorized    = NewWithStatus(1003, http.StatusUnauthorized, "unauthorized")
	ErrForbidden       = NewWithStatus(1004, http.StatusForbidden, "forbidden")
	ErrNotFound        = NewWithStatus(1005, http.StatusNotFound, "not found")
	ErrTooManyRequests = NewWithStatus(1006, http.StatusTooManyRequests, "too many requests")
	ErrNoPermission    = NewWithStatus(1007, http.StatusForbidden, "no permission to access this resource")

	// Auth errors (2xxx)
	ErrTokenInvalid  = NewWithStatus(2001, http.StatusUnauthorized, "token invalid")
	ErrTokenExpired  = NewWithStatus(2002, http.StatusUnauthorized, "token expired")
	ErrTokenMissing  = NewWithStatus(2003, http.StatusUnauthorized, "token missing")
	ErrTokenMismatch = NewWithStatus(2004, http.StatusUnauthorized, "token user mismatch")
	ErrLoginFailed   = NewWithStatus(2005, http.StatusUnauthorized, "login failed")
	ErrUserNotFound  = NewWithStatus(2006, http.StatusNotFound, "user not found")
	ErrUserExists    = NewWithStatus(2007, http.StatusConflict, "user already exists")
	ErrPasswordWrong = NewWithStatus(2008, http.StatusUnauthorized, "password wrong")

	// Conversation errors (3xxx)
	ErrConvNotFound      = NewWithStatus(3001, http.StatusNotFound, "conversation not found")
	ErrNotParticipant    = NewWithStatus(3002, http.StatusForbidden, "not a conversation participant")
	ErrAlreadyInConv     = NewWithStatus(3003, http.StatusConflict, "already a conversation participant")
	ErrParticipantNeeded = NewWithStatus(3004, http.StatusBadRequest, "conversation needs at least two participants")

	// Message errors (4xxx)
	ErrMessageNotFound  = NewWithStatus(4001, http.StatusNotFound, "message not found")
	ErrMessageDuplicate = NewWithStatus(4002, http.StatusConflict, "duplicate message")
	ErrSendFailed       = New(4003, "message send failed")
	ErrNotMessageSender = NewWithStatus(4004, http.StatusForbidden, "not the message sender")

	// Notification errors (5xxx)
	ErrNotificationNotFound = NewWithStatus(5001, http.StatusNotFound, "notification not found")
	ErrInvalidNotifType     = NewWithStatus(5002, http.StatusBadRequest, "invalid notification type")

	// Realtime feed errors (6xxx)
	ErrConnOverLimit   = NewWithStatus(6001, http.StatusServiceUnavailable, "connection over max limit")
	ErrConnClosed      = New(6002, "connection closed")
	ErrInvalidProtocol = NewWithStatus(6003, http.StatusBadRequest, "invalid protocol")
	ErrPushFailed      = New(6004, "push event failed")
)
