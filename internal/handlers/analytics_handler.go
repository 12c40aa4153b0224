package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/reviewlens/internal/models"
)

type AnalyticsReader interface {
	Stats(ctx context.Context) (models.StatsResponse, error)
	Ranking(ctx context.Context) (models.RankingResponse, error)
}

type AnalyticsHandler struct {
	analytics AnalyticsReader
}

func NewAnalyticsHandler(analytics AnalyticsReader) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Stats handles GET /analytics/stats.
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	stats, err := h.analytics.Stats(c.Request.Context())
	if err != nil {
		internalError(c, fmt.Errorf("failed to compute stats: %w", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Ranking handles GET /analytics/ranking.
func (h *AnalyticsHandler) Ranking(c *gin.Context) {
	ranking, err := h.analytics.Ranking(c.Request.Context())
	if err != nil {
		internalError(c, fmt.Errorf("failed to compute ranking: %w", err))
		return
	}
	c.JSON(http.StatusOK, ranking)
}
