package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/prodplan/core/events"
	"github.com/kilianp07/prodplan/core/logger"
	coremetrics "github.com/kilianp07/prodplan/core/metrics"
	"github.com/kilianp07/prodplan/core/model"
	coremon "github.com/kilianp07/prodplan/core/monitoring"
	coremqtt "github.com/kilianp07/prodplan/core/mqtt"
	"github.com/kilianp07/prodplan/core/planlog"
	"github.com/kilianp07/prodplan/core/planner"
	"github.com/kilianp07/prodplan/core/validation"
	infralogger "github.com/kilianp07/prodplan/infra/logger"
	"github.com/kilianp07/prodplan/internal/eventbus"
	"github.com/kilianp07/prodplan/pkg/export"
)

// Result is a computed plan together with its identifier and outcome.
type Result struct {
	ID       string
	Plan     model.ProductionPlan
	Outcome  model.Outcome
	Duration time.Duration
}

// PlanService validates requests, runs the planner and hands the result to
// the metrics, persistence and publication side channels. Side channel
// failures are logged and never fail the request.
type PlanService struct {
	planner      *planner.Planner
	store        planlog.Store
	publisher    coremqtt.Publisher
	sink         coremetrics.MetricsSink
	bus          *eventbus.Bus[any]
	log          logger.Logger
	responseFile string
	now          func() time.Time
}

// PlanServiceOption configures a PlanService.
type PlanServiceOption func(*PlanService)

func WithStore(s planlog.Store) PlanServiceOption {
	return func(p *PlanService) {
		if s != nil {
			p.store = s
		}
	}
}

func WithPublisher(pub coremqtt.Publisher) PlanServiceOption {
	return func(p *PlanService) {
		if pub != nil {
			p.publisher = pub
		}
	}
}

// WithSink records every plan and rejection on sink before the request
// returns.
func WithSink(sink coremetrics.MetricsSink) PlanServiceOption {
	return func(p *PlanService) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithBus publishes plan and rejection events for optional observers. A
// slow observer may miss events; metrics do not depend on the bus.
func WithBus(b *eventbus.Bus[any]) PlanServiceOption {
	return func(p *PlanService) { p.bus = b }
}

func WithServiceLogger(l logger.Logger) PlanServiceOption {
	return func(p *PlanService) {
		if l != nil {
			p.log = l
		}
	}
}

// WithResponseFile writes every computed plan to path.
func WithResponseFile(path string) PlanServiceOption {
	return func(p *PlanService) { p.responseFile = path }
}

func withClock(now func() time.Time) PlanServiceOption {
	return func(p *PlanService) { p.now = now }
}

// NewPlanService wires pl with the given side channels. Unset channels are
// no-ops.
func NewPlanService(pl *planner.Planner, opts ...PlanServiceOption) *PlanService {
	if pl == nil {
		pl = planner.New()
	}
	s := &PlanService{
		planner:   pl,
		store:     planlog.NopStore{},
		publisher: coremqtt.NopPublisher{},
		sink:      coremetrics.NopSink{},
		log:       infralogger.NopLogger{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Compute validates doc and plans it. Validation failures are returned as the
// typed errors of package validation.
func (s *PlanService) Compute(ctx context.Context, doc map[string]any) (Result, error) {
	s.log.Infof("validation started")
	req, err := validation.Validate(doc)
	if err != nil {
		code, path, _ := validation.Classify(err)
		s.Reject(code, path)
		s.log.Warnf("validation failed: %v", err)
		return Result{}, err
	}
	s.log.Infof("validation ok: load %.1f MW, %d units", req.Load, len(req.Powerplants))
	return s.Plan(ctx, req), nil
}

// Reject counts a refused request and announces it on the event bus.
func (s *PlanService) Reject(code, path string) {
	at := s.now()
	if r, ok := s.sink.(coremetrics.RejectionRecorder); ok {
		if err := r.RecordRejection(coremetrics.RejectionRecord{Code: code, Path: path, Time: at}); err != nil {
			s.log.Errorf("record rejection: %v", err)
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.RejectionEvent{Code: code, Path: path, Time: at})
	}
}

// Plan runs the planner on an already validated request. The side channels
// run even when ctx is cancelled once the plan exists, so a client hanging up
// does not lose the record.
func (s *PlanService) Plan(ctx context.Context, req model.LoadRequest) Result {
	s.log.Infof("algorithm started")
	start := s.now()
	plan, out := s.planner.Plan(req)
	res := Result{ID: uuid.NewString(), Plan: plan, Outcome: out, Duration: s.now().Sub(start)}
	s.log.Infow("finished", map[string]any{
		"plan_id":     res.ID,
		"feasible":    out.Feasible,
		"total":       plan.Total(),
		"duration_ms": float64(res.Duration.Microseconds()) / 1000,
	})

	if err := s.sink.RecordPlan(coremetrics.NewPlanRecord(res.ID, req, plan, out, res.Duration, start)); err != nil {
		s.log.Errorf("record plan %s: %v", res.ID, err)
	}
	if s.bus != nil {
		s.bus.Publish(events.PlanEvent{
			ID:       res.ID,
			Request:  req,
			Plan:     plan,
			Outcome:  out,
			Duration: res.Duration,
			Time:     start,
		})
	}
	rec := planlog.PlanRecord{
		ID:         res.ID,
		Timestamp:  start,
		Request:    req,
		Plan:       plan,
		Outcome:    out,
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("store plan %s: %v", res.ID, err)
		coremon.Capture(err, coremon.Event{Component: coremon.ComponentStore, PlanID: res.ID})
	}
	msg := coremqtt.PlanMessage{PlanID: res.ID, Timestamp: start.UnixMilli(), Load: req.Load, Feasible: out.Feasible, Plan: plan}
	if _, err := s.publisher.PublishPlan(ctx, msg); err != nil {
		s.log.Errorf("publish plan %s: %v", res.ID, err)
	}
	if s.responseFile != "" {
		if err := export.WriteResponseFile(s.responseFile, plan); err != nil {
			s.log.Errorf("write response file: %v", err)
			coremon.Capture(err, coremon.Event{Component: coremon.ComponentResponseFile, PlanID: res.ID})
		}
	}
	return res
}

// History returns stored plans matching q.
func (s *PlanService) History(ctx context.Context, q planlog.Query) ([]planlog.PlanRecord, error) {
	return s.store.Query(ctx, q)
}
