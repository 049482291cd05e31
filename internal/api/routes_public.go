package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wordlebot/wordlebot/internal/config"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "wordlebot",
		"version":  config.AppVersion,
		"hostname": s.sysInfo.Hostname,
		"os":       s.sysInfo.OS,
	})
}
