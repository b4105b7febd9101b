package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/prodplan/core/events"
	"github.com/kilianp07/prodplan/core/model"
	coremon "github.com/kilianp07/prodplan/core/monitoring"
	coremqtt "github.com/kilianp07/prodplan/core/mqtt"
	"github.com/kilianp07/prodplan/core/planlog"
	"github.com/kilianp07/prodplan/core/planner"
	"github.com/kilianp07/prodplan/core/validation"
	"github.com/kilianp07/prodplan/infra/metrics"
	"github.com/kilianp07/prodplan/infra/mqtt"
	"github.com/kilianp07/prodplan/internal/eventbus"
)

type failingStore struct{ planlog.NopStore }

func (failingStore) Append(context.Context, planlog.PlanRecord) error { return errors.New("disk full") }

type captureLog struct {
	errors []string
}

func (c *captureLog) Debugf(string, ...any)         {}
func (c *captureLog) Debugw(string, map[string]any) {}
func (c *captureLog) Infof(string, ...any)          {}
func (c *captureLog) Infow(string, map[string]any)  {}
func (c *captureLog) Warnf(string, ...any)          {}
func (c *captureLog) Errorf(f string, _ ...any)     { c.errors = append(c.errors, f) }

func scenarioA() map[string]any {
	return map[string]any{
		"load": 100.0,
		"fuels": map[string]any{
			validation.FuelGas: 13.4, validation.FuelKerosine: 50.8, validation.FuelCO2: 20.0, validation.FuelWind: 50.0,
		},
		"powerplants": []any{
			map[string]any{"name": "gas1", "type": "gasfired", "efficiency": 0.5, "pmin": 50.0, "pmax": 200.0},
			map[string]any{"name": "tj1", "type": "turbojet", "efficiency": 0.3, "pmin": 0.0, "pmax": 16.0},
		},
	}
}

func TestPlanService_Compute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl")
	store, err := planlog.NewJSONLStore(path)
	require.NoError(t, err)
	pub := mqtt.NewMockPublisher()
	bus := eventbus.New[any]()
	defer bus.Close()
	sub := bus.Subscribe()
	respFile := filepath.Join(t.TempDir(), "response.json")
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	svc := NewPlanService(planner.New(),
		WithStore(store), WithPublisher(pub), WithBus(bus),
		WithResponseFile(respFile), withClock(func() time.Time { return at }))

	res, err := svc.Compute(context.Background(), scenarioA())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Feasible)
	assert.Equal(t, model.ProductionPlan{{Name: "gas1", P: 100}, {Name: "tj1", P: 0}}, res.Plan)

	recs, err := svc.History(context.Background(), planlog.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.ID, recs[0].ID)
	assert.True(t, recs[0].Timestamp.Equal(at))

	msgs := pub.Published()
	require.Len(t, msgs, 1)
	assert.Equal(t, res.ID, msgs[0].PlanID)
	assert.Equal(t, at.UnixMilli(), msgs[0].Timestamp)

	data, err := os.ReadFile(respFile)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"gas1","p":100},{"name":"tj1","p":0}]`, string(data))

	ev := <-sub
	pe, ok := ev.(events.PlanEvent)
	require.True(t, ok)
	assert.Equal(t, res.ID, pe.ID)
}

func TestPlanService_ValidationError(t *testing.T) {
	bus := eventbus.New[any]()
	defer bus.Close()
	sub := bus.Subscribe()
	pub := mqtt.NewMockPublisher()
	svc := NewPlanService(nil, WithBus(bus), WithPublisher(pub))

	doc := scenarioA()
	delete(doc, "fuels")
	_, err := svc.Compute(context.Background(), doc)
	var missing *validation.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "fuels", missing.Path)
	assert.Empty(t, pub.Published())

	rej, ok := (<-sub).(events.RejectionEvent)
	require.True(t, ok)
	assert.Equal(t, validation.CodeMissingField, rej.Code)
	assert.Equal(t, "fuels", rej.Path)
}

type tagMonitor struct{ tags []map[string]string }

func (m *tagMonitor) CaptureException(_ error, tags map[string]string) { m.tags = append(m.tags, tags) }
func (m *tagMonitor) Flush(time.Duration)                             {}

func TestPlanService_SideChannelFailuresAreLogged(t *testing.T) {
	mon := &tagMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})
	log := &captureLog{}
	pub := mqtt.NewMockPublisher()
	pub.Fail = true
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	svc := NewPlanService(planner.New(),
		WithStore(failingStore{}), WithPublisher(pub), WithServiceLogger(log),
		WithResponseFile(filepath.Join(blocker, "response.json")))

	res, err := svc.Compute(context.Background(), scenarioA())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Feasible)
	assert.Len(t, log.errors, 3)
	assert.Equal(t, []map[string]string{
		{"component": "store", "plan_id": res.ID},
		{"component": "response_file", "plan_id": res.ID},
	}, mon.tags)
}

func TestPlanService_RecordsEveryPlan(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	bus := eventbus.New[any]()
	defer bus.Close()
	_ = bus.Subscribe() // never drained

	svc := NewPlanService(planner.New(), WithSink(sink), WithBus(bus))

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := svc.Compute(context.Background(), scenarioA())
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	for i := 0; i < 20; i++ {
		_, err := svc.Compute(context.Background(), map[string]any{})
		require.Error(t, err)
	}

	expected := fmt.Sprintf(`
# HELP productionplan_plans_total Total number of computed production plans
# TYPE productionplan_plans_total counter
productionplan_plans_total{feasible="true"} %d
# HELP productionplan_rejections_total Requests refused before planning
# TYPE productionplan_rejections_total counter
productionplan_rejections_total{code="MISSING_FIELD"} 20
`, workers*perWorker)
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"productionplan_plans_total", "productionplan_rejections_total"))
	assert.NotZero(t, bus.Dropped(), "a full observer misses events without affecting metrics")
}

type ctxPublisher struct{ coremqtt.NopPublisher }

func (ctxPublisher) PublishPlan(ctx context.Context, _ coremqtt.PlanMessage) (string, error) {
	return "", ctx.Err()
}

func TestPlanService_CancelledRequestKeepsRecord(t *testing.T) {
	store, err := planlog.NewSQLiteStore(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	log := &captureLog{}
	svc := NewPlanService(planner.New(), WithStore(store), WithPublisher(ctxPublisher{}), WithServiceLogger(log))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.Compute(ctx, scenarioA())
	require.NoError(t, err)
	assert.Empty(t, log.errors, "side channels must not see the cancellation")

	recs, err := svc.History(context.Background(), planlog.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.ID, recs[0].ID)
}
