package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleTrustReport(c *gin.Context) {
	report, err := s.trust.Report(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type trustRescoreRequest struct {
	Table string `json:"table" binding:"required"`
	Limit int    `json:"limit"`
}

func (s *Server) handleTrustRescore(c *gin.Context) {
	var req trustRescoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Limit <= 0 {
		req.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	}

	n, err := s.trust.Rescore(c.Request.Context(), req.Table, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rescored": n})
}
