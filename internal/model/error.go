package model

import "strings"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON   = "INVALID_JSON"
	ErrCodeMissingField  = "MISSING_FIELD"
	ErrCodeInvalidPrice  = "INVALID_PRICE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Client-facing messages.
const (
	MsgRequiredFields = "Name, price, and category are required fields"
	MsgInvalidJSON    = "Invalid JSON body"
	MsgInvalidPrice   = "Price must be a number"
	MsgListFailed     = "Error reading products data"
	MsgCreateFailed   = "Error adding product"
	MsgCreated        = "Product added successfully"
	MsgRouteNotFound  = "Route not found"
	MsgInternalError  = "Internal server error"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	// Fields names the offending request fields, when any.
	Fields []string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Detail describes the offending fields, or "" when there are none.
func (e *DomainError) Detail() string {
	if len(e.Fields) == 0 {
		return ""
	}
	switch e.Code {
	case ErrCodeMissingField:
		return "missing fields: " + strings.Join(e.Fields, ", ")
	default:
		return "invalid fields: " + strings.Join(e.Fields, ", ")
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, fields ...string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Fields:  fields,
	}
}
