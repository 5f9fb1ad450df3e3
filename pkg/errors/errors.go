package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache entry not found")
)

// Attendance verification taxonomy.
var (
	ErrStudentInvalid            = New("STUDENT_INVALID", http.StatusForbidden, "student is not validly enrolled in the current semester")
	ErrDeviceNotRegistered       = New("DEVICE_NOT_REGISTERED", http.StatusForbidden, "device is not registered for this student")
	ErrInvalidToken              = New("INVALID_TOKEN", http.StatusUnauthorized, "invalid attendance token")
	ErrExpiredToken              = New("EXPIRED_TOKEN", http.StatusUnauthorized, "attendance token has expired")
	ErrNoProximityData           = New("NO_PROXIMITY_DATA", http.StatusBadRequest, "no proximity detections provided")
	ErrInvalidVerificationWindow = New("INVALID_VERIFICATION_WINDOW", http.StatusBadRequest, "verification duration must be between 10 and 60 seconds")
	ErrNotPendingVerification    = New("NOT_PENDING_VERIFICATION", http.StatusConflict, "attendance record is not pending verification")
	ErrRecordNotFound            = New("RECORD_NOT_FOUND", http.StatusNotFound, "attendance record not found")
	ErrDeviceAlreadyRegistered   = New("DEVICE_ALREADY_REGISTERED", http.StatusConflict, "student already has a registered device")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
