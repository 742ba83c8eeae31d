package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aldicp/aldicp/pkg/models"
)

func (s *Server) handleAlertsActive(c *gin.Context) {
	var sev *models.Severity
	if q := c.Query("severity"); q != "" {
		v := models.Severity(q)
		sev = &v
	}
	c.JSON(http.StatusOK, gin.H{"alerts": s.alerts.Active(sev)})
}

func (s *Server) handleAlertsSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.alerts.Summary())
}

type alertIDRequest struct {
	ID string `json:"id" binding:"required"`
}

func (s *Server) handleAlertAcknowledge(c *gin.Context) {
	var req alertIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ok, err := s.alerts.Acknowledge(req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, fmt.Errorf("%w: %s", models.ErrNotFound, req.ID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleAlertResolve(c *gin.Context) {
	var req alertIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ok, err := s.alerts.Resolve(req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, fmt.Errorf("%w: %s", models.ErrNotFound, req.ID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type alertsMonitoringRequest struct {
	IntervalSeconds int `json:"interval_seconds"`
}

func (s *Server) handleAlertsMonitoringStart(c *gin.Context) {
	var req alertsMonitoringRequest
	_ = c.ShouldBindJSON(&req)

	interval := time.Duration(req.IntervalSeconds) * time.Second
	s.alerts.Start(interval)
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

func (s *Server) handleAlertsMonitoringStop(c *gin.Context) {
	s.alerts.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}
