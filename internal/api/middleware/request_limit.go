// Package middleware provides HTTP middleware for the narrative gateway
// server: request size limiting and API key authentication.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxRequestSize is the maximum request body size for narrative
// endpoints. Report payloads are JSON case data, not attachments; 2MB
// covers a full reporting period with wide margin.
const DefaultMaxRequestSize = 2 * 1024 * 1024

// RequestSizeLimit returns middleware that caps request body size using
// http.MaxBytesReader, which answers oversized bodies with HTTP 413 and
// closes the connection.
func RequestSizeLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
