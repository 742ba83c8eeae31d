package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/governance"
	"github.com/aldicp/aldicp/pkg/models"
	"github.com/aldicp/aldicp/pkg/registry"
)

func (s *Server) handleListTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": s.registry.List()})
}

func (s *Server) handleTableSchema(c *gin.Context) {
	def, ok := s.registry.Schema(c.Param("name"))
	if !ok {
		respondError(c, fmt.Errorf("%w: %s", models.ErrUnknownTable, c.Param("name")))
		return
	}
	c.JSON(http.StatusOK, def)
}

func (s *Server) handleListRows(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, err := s.registry.Query(c.Request.Context(), c.Param("name"), nil, limit, offset, c.Query("order"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

type insertRowRequest struct {
	Row                 map[string]any `json:"row" binding:"required"`
	UpsertOnFingerprint bool           `json:"upsert_on_fingerprint"`
}

// handleInsertRow routes a write through the Governance Gateway before it
// reaches the Schema Registry when a gateway is wired (spec §4.4, §6
// "governed write path"). With no gateway wired, the row is inserted
// directly, without a governance decision or audit entry.
func (s *Server) handleInsertRow(c *gin.Context) {
	table := c.Param("name")
	var req insertRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if s.governance == nil {
		row, err := s.registry.Insert(c.Request.Context(), table, req.Row, registry.InsertOptions{UpsertOnFingerprint: req.UpsertOnFingerprint})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"row": row})
		return
	}

	decision, err := s.governance.Submit(c.Request.Context(), governance.SubmitRequest{
		Kind:       models.ProposalKindInsertRow,
		Targets:    []string{table},
		Content:    map[string]any{"row": req.Row},
		Risk:       config.RiskMedium,
		CreatedBy:  "control_plane_api",
		Confidence: 1.0,
		Reasoning:  "direct API row insert",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if decision.Pending {
		c.JSON(http.StatusAccepted, gin.H{"update_id": decision.UpdateID, "status": "pending"})
		return
	}
	if !decision.Approved {
		respondError(c, fmt.Errorf("%w: %s", models.ErrValidation, decision.Reason))
		return
	}

	row, err := s.registry.Insert(c.Request.Context(), table, req.Row, registry.InsertOptions{UpsertOnFingerprint: req.UpsertOnFingerprint})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"row": row, "update_id": decision.UpdateID})
}

type updateRowRequest struct {
	Patch map[string]any `json:"patch" binding:"required"`
}

func (s *Server) handleUpdateRow(c *gin.Context) {
	var req updateRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ok, err := s.registry.Update(c.Request.Context(), c.Param("name"), c.Param("id"), req.Patch)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, fmt.Errorf("%w: %s", models.ErrNotFound, c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type analyzeRequest struct {
	Path string `json:"path" binding:"required"`
}

// handleAnalyze runs the Content Analyzer and Schema Inference Engine over
// an arbitrary path on demand, without handing it to the ingestion pipeline
// (spec §4.2, §4.3) — useful for previewing how a file would be classified.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	analysis := s.analyzer.Analyze(req.Path)
	proposal := s.inferrer.Propose(analysis, s.registry.List())
	c.JSON(http.StatusOK, gin.H{"analysis": analysis, "proposal": proposal})
}
