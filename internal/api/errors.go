package api

import (
	"errors"
	"net/http"

	"github.com/bitevents/bitevents/internal/model"
)

// Fixed user-facing messages. classify picks one of these when the response
// body carried no usable message of its own.
const (
	msgBadRequest   = "Invalid request. Please check the entered data."
	msgUnauthorized = "Your session has expired. Please log in again."
	msgForbidden    = "You do not have permission to perform this action."
	msgNotFound     = "The requested resource was not found."
	msgConflict     = "This action conflicts with an existing record."
	msgServerError  = "Server error. Please try again later."
	msgNetwork      = "Cannot reach the server. Check your connection and try again."
	msgFallback     = "Something went wrong. Please try again."
)

// Error is returned for every failed API call. Status is the HTTP status
// code, or 0 when no response was received at all. Message is always a
// non-empty, user-facing string.
type Error struct {
	Status  int
	Message string
	Body    model.ErrorResponse
	Err     error
}

// Error implements the error interface with the user-facing message, so
// callers that print errors verbatim already show the right text.
func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is an API error with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is an API error with a 401 status.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// classify maps a failed response to a user-facing message, in fixed
// precedence order: body message field, body error field, per-status
// message, generic fallback. Transport failures never reach classify;
// they are assigned msgNetwork directly.
func classify(status int, body model.ErrorResponse) string {
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	switch status {
	case http.StatusBadRequest:
		return msgBadRequest
	case http.StatusUnauthorized:
		return msgUnauthorized
	case http.StatusForbidden:
		return msgForbidden
	case http.StatusNotFound:
		return msgNotFound
	case http.StatusConflict:
		return msgConflict
	case http.StatusInternalServerError:
		return msgServerError
	}
	return msgFallback
}

// Message converts any error from this package (or elsewhere) into a
// displayable string. It is total: the result is never empty.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgFallback
}
