package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried upstream
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Component lifecycle errors
	ErrAlreadyStarted = errors.New("component already started")
	ErrNotStarted     = errors.New("component not started")
	ErrShuttingDown   = errors.New("component is shutting down")

	// Connection errors
	ErrNoConnection      = errors.New("no connection available")
	ErrConnectionLost    = errors.New("connection lost")
	ErrConnectionTimeout = errors.New("connection timeout")

	// Data processing errors
	ErrInvalidData    = errors.New("invalid data format")
	ErrDecodeFailed   = errors.New("decode failed")
	ErrSchemaMismatch = errors.New("event does not match schema definition")

	// Configuration errors
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrMissingConfig    = errors.New("missing required configuration")
	ErrUnknownCodec     = errors.New("unknown codec")
	ErrIncompatibleType = errors.New("incompatible output type")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// DecodeError reports a payload that could not be interpreted by a codec.
// Offset is the byte position of the failure, or -1 when unknown.
type DecodeError struct {
	Format string
	Offset int64
	Reason string
	Err    error
}

// NewDecodeError creates a DecodeError with an unknown offset.
func NewDecodeError(format, reason string, err error) *DecodeError {
	return &DecodeError{Format: format, Offset: -1, Reason: reason, Err: err}
}

// Error implements the error interface
func (de *DecodeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s decode failed", de.Format)
	if de.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", de.Offset)
	}
	if de.Reason != "" {
		b.WriteString(": ")
		b.WriteString(de.Reason)
	}
	if de.Err != nil {
		b.WriteString(": ")
		b.WriteString(de.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (de *DecodeError) Unwrap() error {
	return de.Err
}

// Is lets errors.Is match any DecodeError against ErrDecodeFailed and ErrInvalidData.
func (de *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailed || target == ErrInvalidData
}

// BuildError reports a codec configuration that could not produce a decoder.
type BuildError struct {
	Codec  string
	Reason string
	Err    error
}

// Error implements the error interface
func (be *BuildError) Error() string {
	msg := fmt.Sprintf("build %s codec: %s", be.Codec, be.Reason)
	if be.Err != nil {
		msg += ": " + be.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (be *BuildError) Unwrap() error {
	return be.Err
}

// Is lets errors.Is match any BuildError against ErrInvalidConfig.
func (be *BuildError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// IsTransient checks if an error is transient and may be retried by the caller
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	// Decoding is deterministic: a decode failure never becomes transient.
	var de *DecodeError
	if errors.As(err, &de) {
		return false
	}

	if errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrNoConnection) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"connection",
		"temporary",
		"unavailable",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsFatal checks if an error is fatal and should stop processing
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	var be *BuildError
	if errors.As(err, &be) {
		return true
	}

	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrUnknownCodec) ||
		errors.Is(err, ErrIncompatibleType)
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrDecodeFailed) ||
		errors.Is(err, ErrSchemaMismatch)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsFatal(err) {
		return ErrorFatal
	}
	if IsTransient(err) {
		return ErrorTransient
	}

	return ErrorTransient
}

// newClassified creates a new classified error.
// Use WrapTransient(), WrapFatal(), or WrapInvalid() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}
