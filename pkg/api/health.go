package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aldicp/aldicp/pkg/version"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Full(),
		"stats":   s.cfg.Stats(),
	})
}
