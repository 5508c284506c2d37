package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"matrimony-service/internal/models"
	"matrimony-service/internal/services"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRouter, recorder services.ActivityRecorder, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if recorder == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "activity log not configured"})
			return
		}
		recorder.Record(c.Request.Context(), models.Activity{
			Action:     "debug.audit_test",
			ActorID:    userIDFromContext(c),
			OccurredAt: time.Now().UTC(),
		})
		c.JSON(http.StatusOK, gin.H{"status": "ok", "request_id": requestIDFromContext(c)})
	})
}
