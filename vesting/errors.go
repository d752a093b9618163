package vesting

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("Unauthorized")
	ErrAlreadyInitialized = errors.New("AlreadyInitialized")
	ErrNotInitialized     = errors.New("NotInitialized")
	ErrNotFound           = errors.New("NotFound")
	ErrInvalidParameter   = errors.New("InvalidParameter")
	ErrTransferFailed     = errors.New("TransferFailed")
	ErrCliffNotReached    = errors.New("CliffNotReached")
)

// CustomError carries an HTTP-style status code alongside the error kind so
// hosts can map failures onto their own response surface.
type CustomError struct {
	Code    int
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewCustomError(code int, message string, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// StatusCode extracts the embedded code, defaulting to 500 for plain errors.
func StatusCode(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 500
}
