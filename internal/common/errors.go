package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes for the capture core. Every failure surfaced to a caller
// carries exactly one of these.
const (
	CodeInput    = "INPUT"    // bad image reference, empty text
	CodeUpstream = "UPSTREAM" // OCR / vision provider failure
	CodeParse    = "PARSE"    // a field-extraction rule failed
	CodeCache    = "CACHE"    // cache store/read failure
	CodeStore    = "STORE"    // record database read/write failure
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
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrUnavailable       = errors.New("service unavailable")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrRateLimited       = errors.New("rate limited")
	ErrCredentials       = errors.New("credentials missing")
	ErrInternal          = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func InputError(message string, cause error) *AppError {
	return NewAppError(CodeInput, message, cause)
}

func UpstreamError(message string, cause error) *AppError {
	return NewAppError(CodeUpstream, message, cause)
}

func ParseError(message string, cause error) *AppError {
	return NewAppError(CodeParse, message, cause)
}

func CacheError(message string, cause error) *AppError {
	return NewAppError(CodeCache, message, cause)
}

func StoreError(message string, cause error) *AppError {
	return NewAppError(CodeStore, message, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ToStatus maps an application error onto a stable gRPC status for the
// serving layer. Unrecognized errors map to Internal.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedFormat):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrRateLimited):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, ErrPayloadTooLarge):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}
