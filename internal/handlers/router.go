package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const rootMessage = "Hello, AI Review Analyzer!"

// SetupRouter registers the review and analytics routes.
func SetupRouter(reviews ReviewAnalyzer, analytics AnalyticsReader) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger())
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": rootMessage})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	reviewHandler := NewReviewHandler(reviews)
	analyticsHandler := NewAnalyticsHandler(analytics)

	r.POST("/reviews/analyze", reviewHandler.Analyze)

	stats := r.Group("/analytics")
	{
		stats.GET("/stats", analyticsHandler.Stats)
		stats.GET("/ranking", analyticsHandler.Ranking)
	}

	return r
}
