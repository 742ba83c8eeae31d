// Package api implements the Control Plane API (C12, spec §4.12, §6): a
// gin-gonic HTTP binding over the rest of the control plane. Handlers
// decode requests, call into a component, and re-encode its domain types
// directly — no transport-specific error handling belongs in the core
// components themselves.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/aldicp/aldicp/pkg/alerts"
	"github.com/aldicp/aldicp/pkg/analyzer"
	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/governance"
	"github.com/aldicp/aldicp/pkg/inference"
	"github.com/aldicp/aldicp/pkg/ingestion"
	"github.com/aldicp/aldicp/pkg/lifecycle"
	"github.com/aldicp/aldicp/pkg/registry"
	"github.com/aldicp/aldicp/pkg/trust"
)

// Server wires the control plane's components to HTTP routes. Components
// are injected via setters rather than a single constructor so the
// composition root can start serving health checks before every
// background collaborator is ready.
type Server struct {
	engine *gin.Engine
	cfg    *config.Config

	registry   *registry.Registry
	analyzer   *analyzer.Analyzer
	inferrer   *inference.Inferrer
	governance *governance.Gateway
	trust      *trust.Engine
	lifecycle  *lifecycle.Manager
	ingestion  *ingestion.Pipeline
	alerts     *alerts.System
}

// NewServer constructs a Server bound to cfg, with routes registered but
// no domain collaborators wired yet. Call the Set* methods before serving
// requests.
func NewServer(cfg *config.Config) *Server {
	if cfg.Server != nil && cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	s := &Server{engine: engine, cfg: cfg}
	s.registerRoutes()
	return s
}

func (s *Server) SetRegistry(r *registry.Registry) *Server       { s.registry = r; return s }
func (s *Server) SetAnalyzer(a *analyzer.Analyzer) *Server       { s.analyzer = a; return s }
func (s *Server) SetInferrer(i *inference.Inferrer) *Server      { s.inferrer = i; return s }
func (s *Server) SetGovernance(g *governance.Gateway) *Server    { s.governance = g; return s }
func (s *Server) SetTrust(t *trust.Engine) *Server               { s.trust = t; return s }
func (s *Server) SetLifecycle(l *lifecycle.Manager) *Server      { s.lifecycle = l; return s }
func (s *Server) SetIngestion(p *ingestion.Pipeline) *Server     { s.ingestion = p; return s }
func (s *Server) SetAlerts(a *alerts.System) *Server             { s.alerts = a; return s }

// Engine returns the underlying gin engine, e.g. for http.ListenAndServe.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			slog.Warn("request completed with errors",
				"path", c.Request.URL.Path, "status", c.Writer.Status(), "errors", c.Errors.String())
		}
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	lc := s.engine.Group("/agent-lifecycle")
	{
		lc.POST("/spawn", s.handleSpawn)
		lc.POST("/execute-job", s.handleExecuteJob)
		lc.POST("/submit-job", s.handleSubmitJob)
		lc.POST("/process-queue", s.handleProcessQueue)
		lc.POST("/terminate/:id", s.handleTerminate)
		lc.POST("/revoke", s.handleRevoke)
		lc.GET("/agents", s.handleListAgents)
		lc.GET("/agents/:id", s.handleGetAgent)
		lc.GET("/metrics", s.handleLifecycleMetrics)
		lc.POST("/monitoring/start", s.handleStartMonitoring)
		lc.POST("/monitoring/stop", s.handleStopMonitoring)
	}

	mem := s.engine.Group("/memory/tables")
	{
		mem.GET("", s.handleListTables)
		mem.GET("/:name/schema", s.handleTableSchema)
		mem.GET("/:name/rows", s.handleListRows)
		mem.POST("/:name/rows", s.handleInsertRow)
		mem.PATCH("/:name/rows/:id", s.handleUpdateRow)
		mem.POST("/analyze", s.handleAnalyze)
	}

	ing := s.engine.Group("/auto-ingest")
	{
		ing.POST("/start", s.handleIngestStart)
		ing.POST("/stop", s.handleIngestStop)
		ing.GET("/pending", s.handleIngestPending)
		ing.POST("/approve", s.handleIngestApprove)
	}

	al := s.engine.Group("/alerts")
	{
		al.GET("/active", s.handleAlertsActive)
		al.GET("/summary", s.handleAlertsSummary)
		al.POST("/acknowledge", s.handleAlertAcknowledge)
		al.POST("/resolve", s.handleAlertResolve)
		al.POST("/monitoring/start", s.handleAlertsMonitoringStart)
		al.POST("/monitoring/stop", s.handleAlertsMonitoringStop)
	}

	tr := s.engine.Group("/trust")
	{
		tr.GET("/report", s.handleTrustReport)
		tr.POST("/rescore", s.handleTrustRescore)
	}
}
