package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/prodplan/app"
	"github.com/kilianp07/prodplan/app/plugins"
	"github.com/kilianp07/prodplan/core/events"
	"github.com/kilianp07/prodplan/core/planner"
	"github.com/kilianp07/prodplan/core/validation"
	"github.com/kilianp07/prodplan/infra/logger"
	"github.com/kilianp07/prodplan/infra/metrics"
	"github.com/kilianp07/prodplan/infra/mqtt"
	"github.com/kilianp07/prodplan/internal/eventbus"
)

// RunScenario replays sc through a plan service wired with a Prometheus sink,
// an event bus and an in-memory publisher, then checks the plan, the outcome
// flags, the published message, the emitted event and the recorded metrics.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	filter, err := plugins.NewFilter(sc.Filter)
	require.NoError(t, err)
	pl := planner.New(planner.WithFilter(filter), planner.WithMaxSearchNodes(sc.MaxNodes))

	pub := mqtt.NewMockPublisher()
	bus := eventbus.New[any]()
	defer bus.Close()
	sub := bus.Subscribe()

	svc := app.NewPlanService(pl,
		app.WithPublisher(pub), app.WithSink(sink), app.WithBus(bus),
		app.WithServiceLogger(logger.NopLogger{}))
	res, err := svc.Compute(context.Background(), sc.Request)

	if sc.Expected.Error != "" {
		require.Error(t, err)
		code, _, ok := validation.Classify(err)
		require.True(t, ok)
		assert.Equal(t, sc.Expected.Error, code)
		assert.Empty(t, pub.Published())
		assert.Equal(t, 1, seriesCount(t, reg, "productionplan_rejections_total"))
		_, isRejection := (<-sub).(events.RejectionEvent)
		assert.True(t, isRejection)
		return
	}

	require.NoError(t, err)
	assert.Equal(t, sc.Expected.Feasible, res.Outcome.Feasible, "feasible")
	assert.Equal(t, sc.Expected.ProductionPlan(), res.Plan)
	assert.Equal(t, sc.Expected.CorrectedUnit, res.Outcome.CorrectedUnit, "corrected unit")
	assert.Equal(t, sc.Expected.Uncorrectable, res.Outcome.UncorrectableDrift, "uncorrectable drift")

	msgs := pub.Published()
	require.Len(t, msgs, 1)
	assert.Equal(t, res.ID, msgs[0].PlanID)
	assert.Equal(t, res.Plan, msgs[0].Plan)
	assert.Equal(t, 1, seriesCount(t, reg, "productionplan_plans_total"))
	ev, isPlan := (<-sub).(events.PlanEvent)
	require.True(t, isPlan)
	assert.Equal(t, res.ID, ev.ID)
}

func seriesCount(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(reg, name)
	require.NoError(t, err)
	return n
}
