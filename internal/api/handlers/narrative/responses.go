// Package narrative provides the HTTP handlers for the narrative
// generation endpoints.
package narrative

import (
	"net/http"

	"github.com/gin-gonic/gin"

	core "github.com/ridgeline/caseflow/internal/narrative"
)

// respondFailure writes a classified failure body with its transport
// status.
func respondFailure(c *gin.Context, failure *core.Failure) {
	c.JSON(failure.HTTPStatus, failure)
}

// respondBadRequest writes the shared failure shape for malformed
// request bodies. Fallback stays false; the caller must fix the request
// rather than substitute local text.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, core.Failure{
		Error:     message,
		Code:      "invalid_request",
		Retryable: false,
		Fallback:  false,
	})
}
