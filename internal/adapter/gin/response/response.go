// Package response writes the JSON error body shared by handlers and
// middleware.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "crm-service/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Error aborts the request with the status mapped from err. Internal errors
// are reported with a generic message.
func Error(c *gin.Context, err error) {
	code, tag := pkgerrors.HTTPStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "An internal error occurred"
	}
	c.AbortWithStatusJSON(code, ErrorResponse{Error: tag, Message: msg})
}

// BadRequest aborts with 400 and the given machine-readable code.
func BadRequest(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: code, Message: message})
}
