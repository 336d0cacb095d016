package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error is what every failed gateway call returns. Error() is the final
// user-facing string; Status is kept for logging only. Callers above the
// gateway must never branch on the status code.
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

const connectFailureMessage = "Unable to connect to server. Please check your connection."

// normalizeStatus maps a non-2xx response to the single message callers see.
func normalizeStatus(status int, detail string) *Error {
	var msg string
	switch status {
	case 400:
		if detail != "" {
			msg = "Bad Request: " + detail
		} else {
			msg = "Bad Request"
		}
	case 401:
		msg = "Unauthorized access"
	case 403:
		msg = "Access forbidden"
	case 404:
		msg = "Resource not found"
	case 429:
		msg = "Too many requests, retry later"
	case 500:
		msg = "Internal server error, retry"
	default:
		msg = fmt.Sprintf("Server error (%d)", status)
	}
	return &Error{Message: msg, Status: status}
}

// normalizeTransport maps request failures where no response arrived. Context
// cancellation, timeouts and dial errors all collapse to the connect message;
// anything else keeps its own text so genuine bugs stay visible.
func normalizeTransport(err error, fallback string) *Error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &Error{Message: connectFailureMessage}
	case err != nil && err.Error() != "":
		return &Error{Message: err.Error()}
	default:
		return &Error{Message: fallback}
	}
}
