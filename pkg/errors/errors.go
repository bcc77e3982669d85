package driftline_errors

import "errors"

// Common errors
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyExists  = errors.New("already exists")
	ErrNotUploaded    = errors.New("file not uploaded")
	ErrMalformedToken = errors.New("malformed token")
	ErrClosed         = errors.New("closed")
	ErrSessionExpired = errors.New("session expired")
)
