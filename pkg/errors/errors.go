package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUsage         = errors.New("usage error")
	ErrInvalidSeed   = errors.New("invalid seed URL")
	ErrExternalSeed  = errors.New("seed URL is not internal")
	ErrPageDirectory = errors.New("invalid page directory")
	ErrInvalidDepth  = errors.New("invalid max depth")
	ErrIndexFile     = errors.New("index file unavailable")
	ErrIndexSave     = errors.New("index save failed")
	ErrIndexLoad     = errors.New("index load failed")
	ErrQuerySyntax   = errors.New("invalid query syntax")
	ErrPageNotFound  = errors.New("page not found")
	ErrMalformedPage = errors.New("malformed page file")
	ErrFetch         = errors.New("fetch failed")
)

// AppError attaches a process exit code and a human-readable message to a
// sentinel error.
type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// ExitCode returns the exit code carried by err, 0 for nil, and 1 for any
// error without one.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return 1
}
