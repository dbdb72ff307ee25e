// Package errors provides structured error handling for DeclareLens.
// It implements errors with codes, context, and stack traces.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Error codes for programmatic handling
type Code string

const (
	// Fatal input errors (1xx): the run cannot proceed.
	CodeModelMissing    Code = "E101"
	CodeModelUnparsable Code = "E102"
	CodeFilePermission  Code = "E103"

	// Recoverable parse errors (2xx): the offending row is skipped.
	CodeRowSkipped       Code = "E201"
	CodeUnknownTemplate  Code = "E202"
	CodeInvalidTimestamp Code = "E203"
	CodeInvalidNumber    Code = "E204"
	CodeUnknownResult    Code = "E205"

	// Aggregation errors (3xx)
	CodeIdentifierMismatch Code = "E301"
	CodeAlignmentMismatch  Code = "E302"

	// Output errors (4xx)
	CodeExportFailed Code = "E401"

	// System errors (5xx)
	CodeContextCanceled Code = "E501"

	// Unknown
	CodeUnknown Code = "E999"
)

// LensError is the base error type for all DeclareLens errors.
type LensError struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace []Frame
}

// Frame represents a stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *LensError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *LensError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target error.
func (e *LensError) Is(target error) bool {
	if t, ok := target.(*LensError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *LensError) WithContext(key string, value interface{}) *LensError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new LensError.
func New(code Code, message string) *LensError {
	return &LensError{
		Code:       code,
		Message:    message,
		StackTrace: captureStack(2),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code Code, message string) *LensError {
	if err == nil {
		return nil
	}

	return &LensError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *LensError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// captureStack captures the current stack trace.
func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	pcs = pcs[:n]

	cf := runtime.CallersFrames(pcs)
	for {
		frame, more := cf.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more || len(frames) >= 10 {
			break
		}
	}
	return frames
}

// FormatStack returns a formatted stack trace.
func (e *LensError) FormatStack() string {
	var sb strings.Builder
	for _, f := range e.StackTrace {
		sb.WriteString(fmt.Sprintf("  at %s\n    %s:%d\n", f.Function, f.File, f.Line))
	}
	return sb.String()
}

// --- Convenience constructors ---

// ModelMissing creates the fatal error for an absent model file.
func ModelMissing(path string) *LensError {
	return New(CodeModelMissing, "model file not found").WithContext("path", path)
}

// ModelUnparsable creates the fatal error for a model file that yielded
// no constraints.
func ModelUnparsable(path string) *LensError {
	return New(CodeModelUnparsable, "model file contains no parsable constraints").
		WithContext("path", path)
}

// InvalidTimestamp creates a timestamp parsing error.
func InvalidTimestamp(value string) *LensError {
	return New(CodeInvalidTimestamp, "failed to parse timestamp").
		WithContext("value", value)
}

// ContextCanceled creates a cancellation error.
func ContextCanceled(operation string) *LensError {
	return New(CodeContextCanceled, "operation canceled").
		WithContext("operation", operation)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var lensErr *LensError
	if errors.As(err, &lensErr) {
		return lensErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var lensErr *LensError
	if errors.As(err, &lensErr) {
		return lensErr.Code
	}
	return CodeUnknown
}

// IsFatal returns true if the error aborts an analysis run.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeModelMissing, CodeModelUnparsable, CodeFilePermission:
		return true
	default:
		return false
	}
}
