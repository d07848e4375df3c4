package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Cache builder errors
	ErrConfig           ErrorCode = "CONFIG_ERROR"
	ErrGenerationFailed ErrorCode = "GENERATION_FAILED"
	ErrStore            ErrorCode = "STORE_ERROR"
	ErrParse            ErrorCode = "PARSE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewConfigError(message string, err error) *DomainError {
	return NewError(ErrConfig, message, err)
}

func NewGenerationError(message string, err error) *DomainError {
	return NewError(ErrGenerationFailed, message, err)
}

func NewStoreError(message string, err error) *DomainError {
	return NewError(ErrStore, message, err)
}

func NewParseError(message string, err error) *DomainError {
	return NewError(ErrParse, message, err)
}

// CodeOf returns the code of the first DomainError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if de, ok := err.(*DomainError); ok {
			return de.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
