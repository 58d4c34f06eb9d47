// Package app assembles the induction planner from its configuration.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/induction/api/fleet"
	apiplan "github.com/kilianp07/induction/api/plan"
	"github.com/kilianp07/induction/config"
	"github.com/kilianp07/induction/core/ingest"
	coremon "github.com/kilianp07/induction/core/monitoring"
	coreoracle "github.com/kilianp07/induction/core/oracle"
	"github.com/kilianp07/induction/core/planlog"
	"github.com/kilianp07/induction/core/planner"
	"github.com/kilianp07/induction/core/scheduler"
	"github.com/kilianp07/induction/core/store"
	"github.com/kilianp07/induction/infra/logger"
	"github.com/kilianp07/induction/infra/metrics"
	"github.com/kilianp07/induction/infra/monitoring"
	"github.com/kilianp07/induction/infra/mqtt"
	infraoracle "github.com/kilianp07/induction/infra/oracle"
	infrastore "github.com/kilianp07/induction/infra/store"
	"github.com/kilianp07/induction/internal/eventbus"
)

// Service orchestrates the ranking engine, the ingest edges and the HTTP API.
type Service struct {
	Engine     *planner.Engine
	Store      store.Store
	Normalizer *ingest.Normalizer

	cfg     *config.Config
	bus     *eventbus.Bus
	history planlog.Store
	broker  *mqtt.PahoClient
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	var st store.Store
	switch cfg.Store.Backend {
	case "memory":
		st = store.NewMemoryStore()
	default:
		st, err = infrastore.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
	}

	var orc coreoracle.ScoringOracle
	if cfg.Oracle.Mode == "http" {
		orc = infraoracle.NewClient(cfg.Oracle.HTTP)
	} else {
		orc = coreoracle.MockOracle{}
	}

	sink, err := metrics.NewFromConfig(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	var history planlog.Store
	switch cfg.History.Backend {
	case "none":
	case "sqlite":
		history, err = planlog.NewSQLiteStore(cfg.History.Path)
	default:
		history, err = planlog.NewJSONLStore(cfg.History.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	bus := eventbus.New()
	eng := planner.New(st, orc, logger.New("planner"))
	eng.SetMetricsSink(sink)
	eng.SetStandbyPolicy(planner.PolicyByName(cfg.Planner.StandbyPolicy))
	eng.SetHistory(history)
	eng.SetEventBus(bus)
	eng.SetOracleTimeout(time.Duration(cfg.Planner.OracleTimeoutSeconds) * time.Second)

	norm := ingest.New(st, logger.New("ingest"), sink)

	svc := &Service{
		Engine:     eng,
		Store:      st,
		Normalizer: norm,
		cfg:        cfg,
		bus:        bus,
		history:    history,
		log:        logg,
	}
	if cfg.MQTT.Broker != "" {
		broker, err := mqtt.NewPahoClient(cfg.MQTT, norm)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.broker = broker
	}
	return svc, nil
}

// Handler builds the HTTP API routing table.
func (s *Service) Handler() http.Handler {
	token := s.cfg.API.Token
	mux := http.NewServeMux()
	mux.Handle("/api/plan/rank", apiplan.NewRankHandler(s.Engine, s.cfg.Planner.RevenueQuota, token))
	mux.Handle("/api/plan/whatif", apiplan.NewWhatIfHandler(s.Engine, token))
	mux.Handle("/api/plan/ingest", apiplan.NewIngestHandler(s.Normalizer, token))
	mux.Handle("/api/plan", apiplan.NewDayHandler(s.Store, token))
	mux.Handle("/api/fleet/summary", fleet.NewSummaryHandler(s.Store, token))
	if s.history != nil {
		mux.Handle("/api/plan/history", apiplan.NewHistoryHandler(s.history, token))
	}
	return mux
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.broker != nil {
		go s.forwardPlans(ctx)
	}
	if s.cfg.Scheduler.Enabled {
		sched, err := scheduler.New(s.cfg.Scheduler, s.Engine, logger.New("scheduler"))
		if err != nil {
			return err
		}
		go func() {
			if err := sched.Run(ctx); err != nil && err != context.Canceled {
				s.log.Errorf("scheduler: %v", err)
			}
		}()
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("API listening on %s", s.cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// forwardPlans republishes ranking pass events to the depot broker.
func (s *Service) forwardPlans(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			pe, ok := e.(planner.PlanEvent)
			if !ok {
				continue
			}
			payload, err := json.Marshal(pe)
			if err != nil {
				s.log.Errorf("encode plan event: %v", err)
				continue
			}
			if _, err := s.broker.PublishPlan(pe.Date.String(), payload); err != nil {
				s.log.Errorf("publish plan: %v", err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.broker != nil {
		s.broker.Disconnect()
	}
	s.bus.Close()
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.log.Errorf("history close: %v", err)
		}
	}
	coremon.Flush(2 * time.Second)
	return s.Store.Close()
}
