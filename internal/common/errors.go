package common

import (
	"errors"
	"net/http"
)

// AppError is an error that knows how it should be rendered over HTTP.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
	Details any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

// AsAppError finds an AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var target *AppError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Write renders e with the canonical error body. A zero status renders as 400.
func (e *AppError) Write(w http.ResponseWriter, r *http.Request) {
	status := e.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	code := e.Code
	if code == "" {
		code = "BAD_REQUEST"
	}
	JSONError(w, r, status, code, e.Message, e.Details)
}
