package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"matrimony-service/internal/observability"
	"matrimony-service/internal/ratelimit"
)

// RateLimit rejects requests once the caller's key exceeds the limiter's window.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			observability.IncRateLimited(c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// UserOrIPKey keys on the authenticated user, falling back to the client IP.
func UserOrIPKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if userID := c.GetString(UserIDKey); userID != "" {
			return prefix + "user:" + userID
		}
		return prefix + "ip:" + c.ClientIP()
	}
}
