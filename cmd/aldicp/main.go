// Command aldicp is the Agent Lifecycle & Data Ingestion Control Plane
// composition root: it wires every package under pkg/ into a running HTTP
// server and starts the background loops (monitoring, auto-ingest,
// cleanup, alerting) that make the control plane self-operating.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aldicp/aldicp/pkg/agent"
	"github.com/aldicp/aldicp/pkg/alerts"
	"github.com/aldicp/aldicp/pkg/analyzer"
	"github.com/aldicp/aldicp/pkg/api"
	"github.com/aldicp/aldicp/pkg/cleanup"
	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/contradiction"
	"github.com/aldicp/aldicp/pkg/database"
	"github.com/aldicp/aldicp/pkg/events"
	"github.com/aldicp/aldicp/pkg/governance"
	"github.com/aldicp/aldicp/pkg/inference"
	"github.com/aldicp/aldicp/pkg/ingestion"
	"github.com/aldicp/aldicp/pkg/lifecycle"
	"github.com/aldicp/aldicp/pkg/registry"
	"github.com/aldicp/aldicp/pkg/training"
	"github.com/aldicp/aldicp/pkg/trust"
	"github.com/aldicp/aldicp/pkg/version"
)

func main() {
	configDir := flag.String("config-dir", ".", "directory holding aldicp.yaml and .env")
	flag.Parse()

	if err := run(*configDir); err != nil {
		slog.Error("aldicp exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	if err := godotenv.Load(configDir + "/.env"); err != nil {
		slog.Warn("no .env file loaded, continuing with process environment", "dir", configDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	client, err := database.NewClient(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer client.Close()
	db := client.DB()

	reg := registry.New(db)
	if _, err := reg.LoadAll(cfg.SchemaRegistry.DefinitionsDir); err != nil {
		return fmt.Errorf("schema registry load: %w", err)
	}
	if err := reg.Materialize(ctx); err != nil {
		return fmt.Errorf("schema registry materialize: %w", err)
	}

	contra, err := contradiction.New(reg, cfg.SchemaRegistry.RulePacksDir)
	if err != nil {
		return fmt.Errorf("contradiction detector: %w", err)
	}

	trustEngine := trust.New(reg, contra)
	gw := governance.New(*cfg.Governance, db)
	bus := events.New()
	trainer := training.New(cfg, db, bus)
	alertSys := alerts.New(*cfg.Alerts, alerts.NewDBPersister(db), trustEngine, contra)

	contentAnalyzer := analyzer.New()
	inferrer := inference.New()

	lifecycleFactory := func(kind config.AgentKind, instanceID string) (*agent.Agent, error) {
		kindCfg := cfg.AgentKinds[string(kind)]
		constraints := agent.ResolveConstraints(kindCfg.Constraints)

		var variant agent.Variant
		switch kind {
		case config.AgentKindSchemaInference:
			variant = agent.NewSchemaInferenceAgent(contentAnalyzer, inferrer, reg)
		case config.AgentKindIngestion:
			variant = agent.NewIngestionAgent(reg, trustEngine)
		case config.AgentKindCrossDomain:
			variant = agent.NewCrossDomainLearningAgent(reg)
		default:
			return nil, fmt.Errorf("%w: no variant registered for %s", errUnsupportedAgentKind, kind)
		}

		return agent.New(kind, instanceID, kindCfg.Capabilities, constraints, variant), nil
	}
	lifecycleMgr := lifecycle.New(*cfg.Lifecycle, lifecycleFactory, gw, db)

	pipeline := ingestion.New(*cfg.Ingestion, contentAnalyzer, inferrer, reg, gw, lifecycleMgr, trainer, bus, db)
	cleanupSvc := cleanup.NewService(cfg.Retention, lifecycleMgr, gw)

	server := api.NewServer(cfg).
		SetRegistry(reg).
		SetAnalyzer(contentAnalyzer).
		SetInferrer(inferrer).
		SetGovernance(gw).
		SetTrust(trustEngine).
		SetLifecycle(lifecycleMgr).
		SetIngestion(pipeline).
		SetAlerts(alertSys)

	lifecycleMgr.StartMonitoring(ctx)
	pipeline.Start(ctx)
	cleanupSvc.Start(ctx)
	alertSys.Start(cfg.Alerts.MonitorInterval)

	addr := ":" + cfg.Server.HTTPPort
	httpServer := &http.Server{Addr: addr, Handler: server.Engine()}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("aldicp control plane listening", "addr", addr, "version", version.Full())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http server did not shut down cleanly", "error", err)
	}
	pipeline.Stop()
	lifecycleMgr.StopMonitoring()
	cleanupSvc.Stop()
	alertSys.Stop()

	return nil
}

var errUnsupportedAgentKind = errors.New("unsupported agent kind")
