package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fleetscale/autoscaler-core/pkg/models"
	"github.com/gin-gonic/gin"
)

// ClusterManager is the subset of internal/controller.Manager's surface the
// API needs. Kept as a local interface, grounded on the teacher's
// api/handlers/clusters.go ClusterManager, so handlers stay testable without
// a real Manager.
type ClusterManager interface {
	ListClusters() []string
	GetRuleSet(ctx context.Context, clusterId string) (models.GetRuleSetResponse, bool)
	StopCluster(clusterId string) error
	SubscribeAllEvents() <-chan *models.ControllerEvent
}

type ClusterHandler struct {
	manager ClusterManager
}

func NewClusterHandler(manager ClusterManager) *ClusterHandler {
	return &ClusterHandler{manager: manager}
}

// List godoc
// @Summary List managed clusters
// @Description List every cluster ID with a running controller
// @Tags Clusters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /clusters [get]
func (h *ClusterHandler) List(c *gin.Context) {
	clusters := h.manager.ListClusters()
	c.JSON(http.StatusOK, gin.H{
		"clusters": clusters,
		"count":    len(clusters),
	})
}

// GetRuleSet godoc
// @Summary Get a cluster's current rule set
// @Description Returns the availability rule currently held for each managed SKU
// @Tags Clusters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cluster ID"
// @Success 200 {object} models.GetRuleSetResponse
// @Failure 404 {object} map[string]string
// @Failure 504 {object} map[string]string
// @Router /clusters/{id}/ruleset [get]
func (h *ClusterHandler) GetRuleSet(c *gin.Context) {
	clusterId := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, ok := h.manager.GetRuleSet(ctx, clusterId)
	if !ok {
		if ctx.Err() != nil {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "controller did not respond in time"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "cluster not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Stop godoc
// @Summary Stop a cluster's controller
// @Tags Clusters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cluster ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /clusters/{id}/stop [post]
func (h *ClusterHandler) Stop(c *gin.Context) {
	clusterId := c.Param("id")

	if err := h.manager.StopCluster(clusterId); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cluster controller stopped"})
}
