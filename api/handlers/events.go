package handlers

import (
	"net/http"
	"strconv"

	"github.com/fleetscale/autoscaler-core/pkg/database/queries"
	"github.com/gin-gonic/gin"
)

type EventsHandler struct {
	eventRepo *queries.EventRepository
}

func NewEventsHandler(eventRepo *queries.EventRepository) *EventsHandler {
	return &EventsHandler{eventRepo: eventRepo}
}

// GetDecisions godoc
// @Summary List recent scale decisions for a cluster
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cluster ID"
// @Param limit query int false "Max rows to return" default(50)
// @Success 200 {object} map[string]interface{}
// @Router /clusters/{id}/decisions [get]
func (h *EventsHandler) GetDecisions(c *gin.Context) {
	clusterId := c.Param("id")
	limit := h.parseLimit(c)

	decisions, err := h.eventRepo.GetDecisions(c.Request.Context(), clusterId, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch decisions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cluster_id": clusterId,
		"data":       decisions,
		"count":      len(decisions),
	})
}

// GetScaleRequests godoc
// @Summary List recent dispatched scale requests for a cluster
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cluster ID"
// @Param limit query int false "Max rows to return" default(50)
// @Success 200 {object} map[string]interface{}
// @Router /clusters/{id}/scale-requests [get]
func (h *EventsHandler) GetScaleRequests(c *gin.Context) {
	clusterId := c.Param("id")
	limit := h.parseLimit(c)

	requests, err := h.eventRepo.GetScaleRequests(c.Request.Context(), clusterId, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scale requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cluster_id": clusterId,
		"data":       requests,
		"count":      len(requests),
	})
}

func (h *EventsHandler) parseLimit(c *gin.Context) int {
	limit := 50
	if s := c.Query("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	return limit
}
