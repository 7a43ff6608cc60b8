package custom_error

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("resource conflict")
	ErrValidation = errors.New("validation failed")
)

type CustomError interface {
	Error() string
}

type UniqueViolationError struct {
	message string
	code    string // PostgreSQL error code (e.g., "23505")
}

type ForeignKeyViolationError struct {
	message string
	code    string // PostgreSQL error code (e.g., "23503")
}

func (f *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", f.message, f.code)
}

// Is lets callers treat a referenced row that cannot be removed as a conflict.
func (f *ForeignKeyViolationError) Is(target error) bool {
	return target == ErrConflict
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", e.message, e.code)
}

func (e *UniqueViolationError) Is(target error) bool {
	return target == ErrConflict
}

func WrapDBError(message, code string) CustomError {
	switch code {
	case "23505":
		return &UniqueViolationError{
			message: message,
			code:    code,
		}
	case "23503":
		return &ForeignKeyViolationError{
			message: "Value is already used by other resources " + message,
			code:    code,
		}
	default:
		return fmt.Errorf("uncategorized error occurred with code %s: %s", code, message)
	}
}

type NotFoundError struct {
	Resource string
	Key      interface{}
}

func NewNotFoundError(resource string, key interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type ConflictError struct {
	Message string
	// Details is serialized next to the message, e.g. a deletion preview.
	Details interface{}
}

func NewConflictError(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ValidationError carries every accumulated business-rule violation.
type ValidationError struct {
	Errors []string
}

func NewValidationError(errs ...string) *ValidationError {
	return &ValidationError{Errors: errs}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// HTTPStatus maps the error taxonomy onto response codes. Anything unknown is a 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
