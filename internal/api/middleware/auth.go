package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ridgeline/caseflow/internal/narrative/ledger"
)

const clientKeyContextKey = "narrative.clientKey"

// APIKeyAuth returns middleware that validates the caller's API key and
// derives the opaque client key used for per-client quota accounting.
// With no configured keys the gateway runs open (local deployments) but
// still derives client keys so per-client limits apply.
func APIKeyAuth(keys []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			allowed[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		credential := extractCredential(c)

		if len(allowed) > 0 {
			if _, ok := allowed[credential]; !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "invalid or missing api key",
					"code":      "invalid_api_key",
					"retryable": false,
				})
				return
			}
		}

		c.Set(clientKeyContextKey, ledger.DeriveClientKey(c.ClientIP(), credential))
		c.Next()
	}
}

// ClientKey returns the client key derived by APIKeyAuth, or "" when the
// middleware did not run.
func ClientKey(c *gin.Context) string {
	key, _ := c.Get(clientKeyContextKey)
	s, _ := key.(string)
	return s
}

func extractCredential(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return strings.TrimSpace(auth)
	}
	return strings.TrimSpace(c.GetHeader("X-Api-Key"))
}
