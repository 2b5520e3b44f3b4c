// Package errors defines the coded error type shared by every tool, covering
// the failure taxonomy of the suite: missing files, malformed input, network
// failures, unexpected API statuses, and invalid user input.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Code classifies an application error.
type Code string

const (
	CodeFileNotFound Code = "FILE_NOT_FOUND"
	CodeFileFormat   Code = "FILE_FORMAT"
	CodeNetwork      Code = "NETWORK"
	CodeAPIStatus    Code = "API_STATUS"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeIO           Code = "IO"
	CodeInternal     Code = "INTERNAL"
)

// AppError is a coded error that optionally wraps a cause.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError wrapping a cause.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// FileNotFound builds a FILE_NOT_FOUND error for a path.
func FileNotFound(path string, err error) *AppError {
	return Wrap(CodeFileNotFound, fmt.Sprintf("file not found: %s", path), err)
}

// FileFormat builds a FILE_FORMAT error for an unparsable or unsupported file.
func FileFormat(path string, err error) *AppError {
	return Wrap(CodeFileFormat, fmt.Sprintf("malformed or unsupported file: %s", path), err)
}

// Network builds a NETWORK error for a failed request.
func Network(url string, err error) *AppError {
	return Wrap(CodeNetwork, fmt.Sprintf("request failed: %s", url), err)
}

// APIStatus builds an API_STATUS error for a non-2xx response.
func APIStatus(url string, status int) *AppError {
	return New(CodeAPIStatus, fmt.Sprintf("unexpected status %d from %s", status, url))
}

// InvalidInput builds an INVALID_INPUT error.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// NotFound builds a NOT_FOUND error for a named resource.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// CodeOf returns the code of err if it is (or wraps) an AppError,
// CodeInternal otherwise.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// httpStatus maps an error code to a response status for the dashboard API.
func httpStatus(code Code) int {
	switch code {
	case CodeFileNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeFileFormat:
		return http.StatusBadRequest
	case CodeNetwork, CodeAPIStatus:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Response is the JSON error body served by the dashboard.
type Response struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`

	status int
}

// Render implements render.Renderer.
func (r *Response) Render(w http.ResponseWriter, req *http.Request) error {
	render.Status(req, r.status)
	return nil
}

// NewResponse converts any error into a renderable JSON error response.
func NewResponse(err error) *Response {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &Response{Code: appErr.Code, Message: appErr.Message, status: httpStatus(appErr.Code)}
	}
	return &Response{Code: CodeInternal, Message: "internal error", status: http.StatusInternalServerError}
}
