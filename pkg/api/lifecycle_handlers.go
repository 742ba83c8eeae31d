package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/models"
)

type spawnRequest struct {
	Kind       config.AgentKind `json:"kind" binding:"required"`
	InstanceID string           `json:"instance_id"`
}

func (s *Server) handleSpawn(c *gin.Context) {
	var req spawnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	a, err := s.lifecycle.Spawn(c.Request.Context(), req.Kind, req.InstanceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.Status())
}

type executeJobRequest struct {
	Kind  config.AgentKind `json:"kind" binding:"required"`
	Job   models.Job       `json:"job" binding:"required"`
	Reuse bool             `json:"reuse"`
}

func (s *Server) handleExecuteJob(c *gin.Context) {
	var req executeJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	job := req.Job
	result, err := s.lifecycle.ExecuteJob(c.Request.Context(), req.Kind, &job, req.Reuse)
	if err != nil && result == nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job_id":      result.JobID,
		"success":     result.Success,
		"result":      result.Result,
		"duration_ms": result.DurationMS,
		"agent_id":    result.AgentID,
	})
}

type submitJobRequest struct {
	Kind config.AgentKind `json:"kind" binding:"required"`
	Job  models.Job       `json:"job" binding:"required"`
}

func (s *Server) handleSubmitJob(c *gin.Context) {
	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	job := req.Job
	id := s.lifecycle.SubmitJob(req.Kind, &job)
	c.JSON(http.StatusOK, gin.H{"job_id": id, "status": "queued"})
}

func (s *Server) handleProcessQueue(c *gin.Context) {
	maxConcurrent := 0
	fmt.Sscanf(c.Query("max_concurrent"), "%d", &maxConcurrent)

	s.lifecycle.ProcessQueue(c.Request.Context(), maxConcurrent)
	c.JSON(http.StatusOK, gin.H{"metrics": s.lifecycle.Metrics()})
}

func (s *Server) handleTerminate(c *gin.Context) {
	s.lifecycle.Terminate(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type revokeRequest struct {
	AgentID string `json:"agent_id" binding:"required"`
	Reason  string `json:"reason"`
}

func (s *Server) handleRevoke(c *gin.Context) {
	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	s.lifecycle.Revoke(c.Request.Context(), req.AgentID, req.Reason)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, s.lifecycle.Agents())
}

func (s *Server) handleGetAgent(c *gin.Context) {
	a, ok := s.lifecycle.Agent(c.Param("id"))
	if !ok {
		respondError(c, fmt.Errorf("%w: %s", models.ErrNotFound, c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleLifecycleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.lifecycle.Metrics())
}

func (s *Server) handleStartMonitoring(c *gin.Context) {
	s.lifecycle.StartMonitoring(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

func (s *Server) handleStopMonitoring(c *gin.Context) {
	s.lifecycle.StopMonitoring()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}
