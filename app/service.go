// Package app wires the configuration into a running production plan
// service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/prodplan/app/plugins"
	"github.com/kilianp07/prodplan/config"
	coremetrics "github.com/kilianp07/prodplan/core/metrics"
	coremon "github.com/kilianp07/prodplan/core/monitoring"
	coremqtt "github.com/kilianp07/prodplan/core/mqtt"
	"github.com/kilianp07/prodplan/core/planlog"
	"github.com/kilianp07/prodplan/core/planner"
	"github.com/kilianp07/prodplan/infra/logger"
	_ "github.com/kilianp07/prodplan/infra/metrics" // registers the metrics sinks
	"github.com/kilianp07/prodplan/infra/monitoring"
	"github.com/kilianp07/prodplan/infra/mqtt"
	"github.com/kilianp07/prodplan/internal/eventbus"
)

// Service owns the long lived components built from the configuration.
type Service struct {
	Plans *PlanService

	cfg       *config.Config
	store     planlog.Store
	publisher coremqtt.Publisher
	sink      coremetrics.MetricsSink
	bus       *eventbus.Bus[any]
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	filter, err := plugins.NewFilter(cfg.Planner.Filter)
	if err != nil {
		return nil, fmt.Errorf("unit filter: %w", err)
	}
	store, err := planlog.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("plan store: %w", err)
	}
	pub, err := mqtt.New(cfg.MQTT)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("mqtt publisher: %w", err)
	}

	bus := eventbus.New[any]()
	pl := planner.New(
		planner.WithFilter(filter),
		planner.WithMaxSearchNodes(cfg.Planner.MaxSearchNodes),
		planner.WithLogger(logger.New("planner")),
	)
	plans := NewPlanService(pl,
		WithStore(store),
		WithPublisher(pub),
		WithSink(sink),
		WithBus(bus),
		WithServiceLogger(logger.New("plan_service")),
		WithResponseFile(cfg.Server.ResponseFile),
	)
	log.Infof("service ready: store=%s filter=%s mqtt=%t", cfg.Store.Backend, cfg.Planner.Filter.Type, cfg.MQTT.Enabled)
	return &Service{
		Plans:     plans,
		cfg:       cfg,
		store:     store,
		publisher: pub,
		sink:      sink,
		bus:       bus,
		log:       log,
	}, nil
}

// Events exposes plan and rejection events to in-process observers.
func (s *Service) Events() *eventbus.Bus[any] { return s.bus }

// Serve serves handler on the configured address until ctx is cancelled,
// then shuts the server down gracefully.
func (s *Service) Serve(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("event observers missed %d events", n)
	}
	s.bus.Close()
	s.publisher.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return s.store.Close()
}
