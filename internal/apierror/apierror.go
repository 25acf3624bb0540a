// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Message string `json:"error"`
}

func New(msg string) *APIError {
	return &APIError{Message: msg}
}

// FieldsError wraps multiple field errors reported by struct validation.
type FieldsError struct {
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *FieldsError {
	return &FieldsError{Message: "Error de validacion", Fields: fields}
}
