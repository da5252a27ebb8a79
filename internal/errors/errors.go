package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents application error codes.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrTimeout    ErrorCode = "TIMEOUT"
	ErrDatabase   ErrorCode = "DATABASE_ERROR"

	// Generative service errors. Every operation that talks to the AI service
	// recovers from these by falling back to local behavior.
	ErrMissingCredential  ErrorCode = "MISSING_CREDENTIAL"
	ErrAIService          ErrorCode = "AI_SERVICE_ERROR"
	ErrUnparsableResponse ErrorCode = "UNPARSABLE_RESPONSE"

	// Platform errors
	ErrUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrRecognitionAborted  ErrorCode = "RECOGNITION_ABORTED"
	ErrSessionBusy         ErrorCode = "SESSION_BUSY"

	// Supporting service errors
	ErrStorageService ErrorCode = "STORAGE_SERVICE_ERROR"
	ErrPubSubService  ErrorCode = "PUBSUB_SERVICE_ERROR"
)

// AppError represents an application error with code and metadata.
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first AppError in the chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Recoverable reports whether a failure should be absorbed by a fallback
// instead of surfacing to the caller.
func Recoverable(err error) bool {
	switch CodeOf(err) {
	case ErrMissingCredential, ErrAIService, ErrUnparsableResponse, ErrTimeout:
		return true
	default:
		return false
	}
}

// HTTPStatus returns the HTTP status code for the error.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUnsupportedPlatform:
		return http.StatusNotImplemented
	case ErrRecognitionAborted:
		return http.StatusConflict
	case ErrSessionBusy:
		return http.StatusTooManyRequests
	case ErrTimeout:
		return http.StatusGatewayTimeout
	case ErrMissingCredential, ErrAIService, ErrUnparsableResponse, ErrStorageService, ErrPubSubService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GRPCStatus returns the gRPC status for the error.
func (e *AppError) GRPCStatus() *status.Status {
	var code codes.Code
	switch e.Code {
	case ErrValidation:
		code = codes.InvalidArgument
	case ErrNotFound:
		code = codes.NotFound
	case ErrUnsupportedPlatform:
		code = codes.Unimplemented
	case ErrRecognitionAborted:
		code = codes.Canceled
	case ErrSessionBusy:
		code = codes.ResourceExhausted
	case ErrTimeout:
		code = codes.DeadlineExceeded
	case ErrMissingCredential, ErrAIService, ErrUnparsableResponse, ErrStorageService, ErrPubSubService:
		code = codes.Unavailable
	default:
		code = codes.Internal
	}
	return status.New(code, e.Message)
}

// Common error constructors
func Internal(message string) *AppError {
	return New(ErrInternal, message)
}

func InternalWrap(message string, err error) *AppError {
	return Wrap(ErrInternal, message, err)
}

func Validation(message string) *AppError {
	return New(ErrValidation, message)
}

func NotFound(resource string) *AppError {
	return New(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

func MissingCredential(service string) *AppError {
	return New(ErrMissingCredential, fmt.Sprintf("%s credential not configured", service))
}

func AIService(message string, err error) *AppError {
	return Wrap(ErrAIService, message, err)
}

func Unparsable(message string, err error) *AppError {
	return Wrap(ErrUnparsableResponse, message, err)
}

func UnsupportedPlatform(capability string) *AppError {
	return New(ErrUnsupportedPlatform, fmt.Sprintf("%s is not available on this device", capability))
}

func RecognitionAborted(id string) *AppError {
	return New(ErrRecognitionAborted, "recognition "+id+" was aborted")
}

func Storage(message string, err error) *AppError {
	return Wrap(ErrStorageService, message, err)
}

func PubSub(message string, err error) *AppError {
	return Wrap(ErrPubSubService, message, err)
}
