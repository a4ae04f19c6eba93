package errors

import (
	stderrors "errors"
	"fmt"

	"sheetstack/domain/table"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if the chain contains an AppError,
// otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether the error chain contains an AppError with the code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeReadError         = "READ_ERROR"
	CodeSchemaMismatch    = "SCHEMA_MISMATCH"
	CodeAlreadySeeded     = "ALREADY_SEEDED"
	CodeDuplicateColumn   = "DUPLICATE_COLUMN"
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
)

// Common error constructors
func UnsupportedFormat(filename string) *AppError {
	return New(CodeUnsupportedFormat, fmt.Sprintf("unsupported file type for %q: upload .csv, .xlsx, or .xls", filename))
}

func ReadError(filename string, cause error) *AppError {
	return &AppError{
		Code:    CodeReadError,
		Message: fmt.Sprintf("failed to read %q", filename),
		Cause:   cause,
	}
}

func AlreadySeeded() *AppError {
	return New(CodeAlreadySeeded, "schema already locked: route subsequent files to append")
}

func DuplicateColumn(label string) *AppError {
	return New(CodeDuplicateColumn, fmt.Sprintf("duplicate column label %q after normalization", label))
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// SchemaMismatchError is returned when an incoming file's columns disagree
// with the locked schema. It carries the full comparison so the UI can show
// the missing/extra/reorder breakdown instead of parsing a message.
type SchemaMismatchError struct {
	Match    table.MatchResult
	Expected []string
	Incoming []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("column mismatch: %d missing, %d extra, reordered=%v",
		len(e.Match.Missing), len(e.Match.Extra), e.Match.Reordered)
}

// SchemaMismatch wraps a comparison result as an AppError so GetCode works
// on it like on every other error in the taxonomy.
func SchemaMismatch(match table.MatchResult, expected, incoming []string) *AppError {
	return &AppError{
		Code:    CodeSchemaMismatch,
		Message: "column mismatch: this file was not added",
		Cause: &SchemaMismatchError{
			Match:    match,
			Expected: append([]string(nil), expected...),
			Incoming: append([]string(nil), incoming...),
		},
	}
}

// AsSchemaMismatch extracts the mismatch detail from an error chain.
func AsSchemaMismatch(err error) (*SchemaMismatchError, bool) {
	var sm *SchemaMismatchError
	if stderrors.As(err, &sm) {
		return sm, true
	}
	return nil, false
}
