package errors

import (
	"fmt"
)

// ErrorType classifies an application error
type ErrorType string

const (
	ErrTypeInput           ErrorType = "INPUT"
	ErrTypeEmptyInput      ErrorType = "EMPTY_INPUT"
	ErrTypeMalformedRow    ErrorType = "MALFORMED_ROW"
	ErrTypeUnknownCurrency ErrorType = "UNKNOWN_CURRENCY"
	ErrTypeMalformedYear   ErrorType = "MALFORMED_YEAR"
	ErrTypeParsing         ErrorType = "PARSING"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeValidation      ErrorType = "VALIDATION"
	ErrTypeConfig          ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err is an AppError of the given type anywhere in
// its chain.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Type == errType {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Helper functions for common error types

// NewInputError creates an input-access error (missing or unreadable file)
func NewInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInput, message, cause)
}

// NewEmptyInputError creates an error for an input file with no header or
// no data rows
func NewEmptyInputError(message string) *AppError {
	return NewAppError(ErrTypeEmptyInput, message, nil)
}

// NewMalformedRowError creates an error for a row whose shape does not
// match the header
func NewMalformedRowError(message string) *AppError {
	return NewAppError(ErrTypeMalformedRow, message, nil)
}

// NewUnknownCurrencyError creates an error for a salary currency missing
// from the conversion table
func NewUnknownCurrencyError(currency string) *AppError {
	return NewAppError(ErrTypeUnknownCurrency,
		fmt.Sprintf("currency %q is not in the conversion table", currency), nil).
		WithContext("currency", currency)
}

// NewMalformedYearError creates an error for a publication date whose year
// cannot be extracted
func NewMalformedYearError(publishedAt string, cause error) *AppError {
	return NewAppError(ErrTypeMalformedYear,
		fmt.Sprintf("cannot extract year from %q", publishedAt), cause).
		WithContext("published_at", publishedAt)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
