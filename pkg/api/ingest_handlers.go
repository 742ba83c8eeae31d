package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleIngestStart(c *gin.Context) {
	s.ingestion.Start(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

func (s *Server) handleIngestStop(c *gin.Context) {
	s.ingestion.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (s *Server) handleIngestPending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pending": s.ingestion.Pending()})
}

type ingestApproveRequest struct {
	ApprovalID string `json:"approval_id" binding:"required"`
	Approved   bool   `json:"approved"`
	Reason     string `json:"reason"`
}

func (s *Server) handleIngestApprove(c *gin.Context) {
	var req ingestApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := s.ingestion.Approve(c.Request.Context(), req.ApprovalID, req.Approved, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
