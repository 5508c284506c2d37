package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"matrimony-service/internal/models"
	"matrimony-service/internal/services"
)

// ProfileHandler serves redacted profiles.
type ProfileHandler struct {
	service *services.ProfileService
}

func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile returns one profile as the caller may see it.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), userIDFromContext(c), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Search runs discovery search.
func (h *ProfileHandler) Search(c *gin.Context) {
	criteria := models.ProfileSearch{
		Gender:       c.Query("gender"),
		Religion:     c.Query("religion"),
		Community:    c.Query("community"),
		MotherTongue: c.Query("motherTongue"),
		City:         c.Query("city"),
		Country:      c.Query("country"),
	}

	ints := map[string]*int{
		"minAge": &criteria.MinAge,
		"maxAge": &criteria.MaxAge,
		"page":   &criteria.Page,
		"limit":  &criteria.Limit,
	}
	for name, dst := range ints {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return
		}
		*dst = n
	}

	profiles, err := h.service.Search(c.Request.Context(), userIDFromContext(c), criteria)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}
