package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/internal/personalization"
)

// HealthHandlers exposes liveness/readiness and read-only introspection
// endpoints: health, ready, the leaderboard, and the personalisation
// model's status.
type HealthHandlers struct {
	gateway repository.RowStoreGateway
	model   *personalization.Model
}

// NewHealthHandlers creates a new HealthHandlers instance.
func NewHealthHandlers(gateway repository.RowStoreGateway, model *personalization.Model) *HealthHandlers {
	return &HealthHandlers{gateway: gateway, model: model}
}

// Health handles GET /health: process liveness only, no dependency checks.
func (h *HealthHandlers) Health(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready: the store must answer a cheap read.
func (h *HealthHandlers) Ready(c *gin.Context) {
	if _, err := h.gateway.Leaderboard(c.Request.Context()); err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "ready"})
}

// Leaderboard handles GET /leaderboard, paginated via limit/offset.
func (h *HealthHandlers) Leaderboard(c *gin.Context) {
	limit := getQueryInt(c, "limit", 50)
	offset := getQueryInt(c, "offset", 0)

	entries, err := h.gateway.Leaderboard(c.Request.Context())
	if err != nil {
		respondAPIError(c, err)
		return
	}

	total := len(entries)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	respondList(c, http.StatusOK, entries[offset:end], total, limit, offset)
}

// ModelStatus handles GET /model_status.
func (h *HealthHandlers) ModelStatus(c *gin.Context) {
	users, activities := h.model.IndexSizes()
	respondJSON(c, http.StatusOK, gin.H{
		"ready":          h.model.Ready(),
		"user_index":     users,
		"activity_index": activities,
	})
}
