package response

import (
	"errors"
	"net/http"

	custom_error "itinventory/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Error writes err with the status its type maps to. message is used as the
// "error" field for anything that is not a validation failure.
func Error(c *gin.Context, err error, message string) {
	status := custom_error.HTTPStatus(err)

	var validationErr *custom_error.ValidationError
	if errors.As(err, &validationErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   message,
			"reasons": validationErr.Errors,
		})
		return
	}

	body := gin.H{"error": message, "details": err.Error()}

	var conflictErr *custom_error.ConflictError
	if errors.As(err, &conflictErr) && conflictErr.Details != nil {
		body["details"] = conflictErr.Details
		body["message"] = conflictErr.Message
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(status, body)
}
