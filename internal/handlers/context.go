package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"matrimony-service/internal/middleware"
	"matrimony-service/internal/models"
	"matrimony-service/internal/privacy"
)

func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(middleware.RequestIDKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

// writeError maps domain errors onto HTTP responses. Blocked and hidden
// profiles render exactly like missing ones.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": models.ErrNotAuthorized.Error()})
	case errors.Is(err, models.ErrInterestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrInterestNotFound.Error()})
	case errors.Is(err, models.ErrDuplicateRelationship):
		c.JSON(http.StatusConflict, gin.H{"error": models.ErrDuplicateRelationship.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": models.ErrInvalidTransition.Error()})
	case errors.Is(err, models.ErrTargetNotEligible):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": models.ErrTargetNotEligible.Error()})
	case errors.Is(err, models.ErrProfileNotFound), privacy.IsDenied(err):
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrProfileNotFound.Error()})
	default:
		log.Error().Err(err).
			Str("request_id", requestIDFromContext(c)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
