package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	custom_error "itinventory/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedKey    string
	}{
		{name: "not found", err: custom_error.NewNotFoundError("Asset", 1), expectedStatus: http.StatusNotFound, expectedKey: "details"},
		{name: "validation", err: custom_error.NewValidationError("a", "b"), expectedStatus: http.StatusBadRequest, expectedKey: "reasons"},
		{name: "conflict with preview", err: &custom_error.ConflictError{Message: "has assets", Details: map[string]int{"asset_count": 2}}, expectedStatus: http.StatusConflict, expectedKey: "message"},
		{name: "unexpected", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedKey: "details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Error(c, tt.err, "failure")

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "failure", body["error"])
			assert.Contains(t, body, tt.expectedKey)
		})
	}
}
