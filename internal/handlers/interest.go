package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"matrimony-service/internal/models"
	"matrimony-service/internal/services"
)

// InterestHandler exposes the interest lifecycle over HTTP.
type InterestHandler struct {
	service *services.InterestService
}

// NewInterestHandler builds an InterestHandler.
func NewInterestHandler(service *services.InterestService) *InterestHandler {
	return &InterestHandler{service: service}
}

// CreateInterest sends an interest from the authenticated user.
func (h *InterestHandler) CreateInterest(c *gin.Context) {
	var req struct {
		ToUserID string `json:"toUserId" binding:"required"`
		Message  string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interest, err := h.service.Create(c.Request.Context(), userIDFromContext(c), strings.TrimSpace(req.ToUserID), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"interest": interest})
}

// ListReceived returns interests sent to the authenticated user.
func (h *InterestHandler) ListReceived(c *gin.Context) {
	filter, ok := bindInterestFilter(c)
	if !ok {
		return
	}
	interests, err := h.service.ListReceived(c.Request.Context(), userIDFromContext(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": interests})
}

// ListSent returns interests the authenticated user has sent.
func (h *InterestHandler) ListSent(c *gin.Context) {
	filter, ok := bindInterestFilter(c)
	if !ok {
		return
	}
	interests, err := h.service.ListSent(c.Request.Context(), userIDFromContext(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": interests})
}

// Respond accepts or rejects a received interest.
func (h *InterestHandler) Respond(c *gin.Context) {
	var req struct {
		Status  string  `json:"status" binding:"required"`
		Message *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interest, err := h.service.Respond(c.Request.Context(), c.Param("id"), userIDFromContext(c), models.InterestStatus(req.Status), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interest": interest})
}

// Withdraw retracts a sent interest.
func (h *InterestHandler) Withdraw(c *gin.Context) {
	interest, err := h.service.Withdraw(c.Request.Context(), c.Param("id"), userIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interest": interest})
}

// MarkRead flags a received interest as read.
func (h *InterestHandler) MarkRead(c *gin.Context) {
	interest, err := h.service.MarkRead(c.Request.Context(), c.Param("id"), userIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interest": interest})
}

// Stats returns sent/received counts for the authenticated user.
func (h *InterestHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func bindInterestFilter(c *gin.Context) (models.InterestFilter, bool) {
	var filter models.InterestFilter
	if raw := c.Query("status"); raw != "" {
		status := models.InterestStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return filter, false
		}
		filter.Status = &status
	}
	if raw := c.Query("actionable"); raw != "" {
		actionable, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid actionable flag"})
			return filter, false
		}
		filter.Actionable = actionable
	}
	return filter, true
}
