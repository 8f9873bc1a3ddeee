package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrUnsupportedImage marks a container the decoder stack cannot
	// safely open (HEIF family, camera RAW). Client-correctable.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrRequestTimeout marks the whole-request ceiling elapsing,
	// distinct from other internal errors so callers can retry with a
	// smaller image or a different mode.
	ErrRequestTimeout = errors.New("recognition request timed out")

	// ErrEngine marks an unexpected engine-session acquisition or I/O
	// failure.
	ErrEngine = errors.New("engine error")

	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// StatusFromError maps a pipeline error to a gRPC status. In
// production mode internal errors are redacted to a generic message;
// dev mode keeps the raw error text for debugging.
func StatusFromError(err error, dev bool) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrUnsupportedImage):
		return InvalidArgumentError("unsupported_image_type")
	case errors.Is(err, ErrRequestTimeout):
		return status.Error(codes.DeadlineExceeded, "recognition timed out")
	default:
		if dev {
			return InternalError(err.Error())
		}
		return InternalError("recognition failed")
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}
