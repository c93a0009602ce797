package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck is liveness only: no database, model, or notifier dependency.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
