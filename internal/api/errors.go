package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

func NewAPIError(errType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

func NewNetworkError(message string, cause error) *Error {
	return NewAPIError(ErrNetworkConnection, message, cause)
}

func NewTimeoutError(operation string, timeout time.Duration) *Error {
	return NewAPIError(ErrTimeout,
		fmt.Sprintf("operation %s timed out after %v", operation, timeout), nil)
}

// NewRejectedError is returned when the envelope reports success=false. The
// message is the server's messages joined with ", ".
func NewRejectedError(status int, messages []string) *Error {
	message := strings.Join(messages, ", ")
	if message == "" {
		message = "request rejected by server"
	}
	return &Error{Type: ErrRejected, Message: message, Status: status}
}

func NewStatusError(status int) *Error {
	errType := ErrServer
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		errType = ErrUnauthorized
	case status == http.StatusNotFound:
		errType = ErrNotFound
	case status >= 400 && status < 500:
		errType = ErrRejected
	}
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf("unexpected status %d", status),
		Status:  status,
	}
}

func NewBadResponseError(message string, cause error) *Error {
	return NewAPIError(ErrBadResponse, message, cause)
}

func NewUnsupportedFileError(name string) *Error {
	return NewAPIError(ErrUnsupportedFile,
		fmt.Sprintf("only jpg/png allowed: %s", name), nil)
}

func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewAPIError(ErrTimeout, "request timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewAPIError(ErrTimeout, "request timed out", err)
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return NewAPIError(ErrTimeout, "request timed out", err)
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host"):
		return NewNetworkError("connection failed", err)
	default:
		return NewNetworkError("unknown network error", err)
	}
}

// IsRetryable reports whether repeating the same request could succeed.
// The client never retries on its own.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrNetworkConnection, ErrTimeout, ErrServer:
		return true
	default:
		return false
	}
}

func (e *Error) UserMessage() string {
	switch e.Type {
	case ErrNetworkConnection:
		return "Network connection failed. Please check your internet connection."
	case ErrTimeout:
		return "Request timed out. Please try again."
	case ErrRejected:
		return e.Message
	case ErrUnauthorized:
		return "The API key was not accepted."
	case ErrNotFound:
		return "The contact no longer exists."
	case ErrServer:
		return "The contacts service is temporarily unavailable."
	case ErrBadResponse:
		return "The contacts service sent an unexpected response."
	case ErrUnsupportedFile:
		return "Only jpg/png allowed."
	default:
		return "An unexpected error occurred."
	}
}
