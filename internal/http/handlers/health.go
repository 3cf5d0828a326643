package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/givebridge-backend/internal/http/response"
)

// GET /api/health
func HealthCheck(c *gin.Context) {
	response.Respond(c, http.StatusOK, gin.H{"message": "API is running"})
}
