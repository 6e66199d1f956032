package feed

import "errors"

// Feed errors
var (
	ErrConnClosed       = errors.New("connection closed")
	ErrWriteChannelFull = errors.New("write channel full")
	ErrInvalidProtocol  = errors.New("invalid protocol")
	ErrUserIdMismatch   = errors.New("user Id mismatch")
	ErrPanic            = errors.New("panic error")
)
