package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, err)
}

func internalError(c *gin.Context, err error) {
	respondError(c, http.StatusInternalServerError, err)
}
