package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/processing"
)

type ReviewAnalyzer interface {
	Analyze(ctx context.Context, content string) (models.Review, error)
}

type ReviewHandler struct {
	analyzer ReviewAnalyzer
}

func NewReviewHandler(analyzer ReviewAnalyzer) *ReviewHandler {
	return &ReviewHandler{analyzer: analyzer}
}

// Analyze handles POST /reviews/analyze.
func (h *ReviewHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.analyzer.Analyze(c.Request.Context(), req.Content)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, review)
	case errors.Is(err, processing.ErrEmptyContent):
		badRequest(c, err)
	case errors.Is(err, processing.ErrClassification):
		respondError(c, http.StatusUnprocessableEntity, err)
	default:
		internalError(c, err)
	}
}
