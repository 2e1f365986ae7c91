package models

import "errors"

// Error codes for the job pipeline. Handlers map these onto HTTP statuses,
// the polling client maps them onto terminal error states.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeCollision  = "COLLISION"
	CodeUpstream   = "UPSTREAM_ERROR"
	CodeTimeout    = "TIMEOUT"
)

// Error is a coded pipeline error with a human-readable message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func NewCollisionError(message string) *Error {
	return &Error{Code: CodeCollision, Message: message}
}

func NewUpstreamError(message string) *Error {
	return &Error{Code: CodeUpstream, Message: message}
}

func NewTimeoutError(message string) *Error {
	return &Error{Code: CodeTimeout, Message: message}
}

// CodeOf extracts the pipeline error code, or empty for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }
func IsNotFound(err error) bool   { return CodeOf(err) == CodeNotFound }
func IsCollision(err error) bool  { return CodeOf(err) == CodeCollision }
func IsUpstream(err error) bool   { return CodeOf(err) == CodeUpstream }
func IsTimeout(err error) bool    { return CodeOf(err) == CodeTimeout }
