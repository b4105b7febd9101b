package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/prodplan/core/metrics"
	"github.com/kilianp07/prodplan/infra/logger"
)

// InfluxSink writes production plans to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// PlanPoints converts a plan record into line protocol points: one
// production_plan point and one unit_output point per unit.
func PlanPoints(rec coremetrics.PlanRecord) []*write.Point {
	pts := make([]*write.Point, 0, len(rec.Units)+1)
	p := write.NewPointWithMeasurement("production_plan").
		AddTag("plan_id", rec.PlanID).
		AddTag("feasible", strconv.FormatBool(rec.Feasible)).
		AddField("load_mw", round3(rec.Load)).
		AddField("drift_mw", round3(rec.Drift)).
		AddField("drift_corrected", rec.DriftCorrected).
		AddField("uncorrectable_drift", rec.UncorrectableDrift).
		AddField("search_nodes", rec.SearchNodes).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		AddField("utilisation", round3(Utilisation(rec))).
		SetTime(rec.Time)
	if rec.CorrectedUnit != "" {
		p = p.AddTag("corrected_unit", rec.CorrectedUnit)
	}
	pts = append(pts, p)
	for _, u := range rec.Units {
		pts = append(pts, write.NewPointWithMeasurement("unit_output").
			AddTag("plan_id", rec.PlanID).
			AddTag("unit", u.Name).
			AddTag("type", string(u.Type)).
			AddTag("selected", strconv.FormatBool(u.Selected)).
			AddTag("filtered", strconv.FormatBool(u.Filtered)).
			AddField("p_mw", round3(u.P)).
			AddField("pmin_mw", round3(u.PMin)).
			AddField("pmax_mw", round3(u.PMax)).
			SetTime(rec.Time))
	}
	return pts
}

// RecordPlan writes the plan as line protocol points.
func (s *InfluxSink) RecordPlan(rec coremetrics.PlanRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, PlanPoints(rec)...)
}

// RecordRejection writes a refused request.
func (s *InfluxSink) RecordRejection(rec coremetrics.RejectionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("request_rejected").
		AddTag("code", rec.Code).
		AddField("path", rec.Path).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
