package custom_error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapDBError(t *testing.T) {
	unique := WrapDBError("duplicate serial", "23505")
	_, ok := unique.(*UniqueViolationError)
	assert.True(t, ok)
	assert.True(t, IsConflict(unique))

	fk := WrapDBError("vendor", "23503")
	_, ok = fk.(*ForeignKeyViolationError)
	assert.True(t, ok)
	assert.Contains(t, fk.Error(), "code: 23503")

	other := WrapDBError("boom", "42P01")
	assert.False(t, IsConflict(other))
	assert.Contains(t, other.Error(), "42P01")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NewNotFoundError("Vendor", 4), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", NewNotFoundError("Vendor", 4)), http.StatusNotFound},
		{"conflict", NewConflictError("PO %s already exists", "PO-1"), http.StatusConflict},
		{"unique violation", WrapDBError("dup", "23505"), http.StatusConflict},
		{"validation", NewValidationError("a", "b"), http.StatusBadRequest},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := NewNotFoundError("Purchase Order", "PO-404")
	assert.Equal(t, "Purchase Order not found: PO-404", err.Error())
	assert.True(t, IsNotFound(err))
}
