// Package planlog persists computed production plans and lets operators query
// them back by time range or unit.
package planlog

import (
	"context"
	"time"

	"github.com/kilianp07/prodplan/core/model"
)

// PlanRecord captures one planning request and the plan returned for it.
type PlanRecord struct {
	ID         string               `json:"id"`
	Timestamp  time.Time            `json:"timestamp"`
	Request    model.LoadRequest    `json:"request"`
	Plan       model.ProductionPlan `json:"plan"`
	Outcome    model.Outcome        `json:"outcome"`
	DurationMS float64              `json:"duration_ms"`
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start time.Time
	End   time.Time
	// Plant keeps records whose roster contains the named unit.
	Plant string
	// Feasible, when set, keeps only records with the given feasibility.
	Feasible *bool
	Limit    int
}

// Store persists PlanRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec PlanRecord) error
	Query(ctx context.Context, q Query) ([]PlanRecord, error)
	Close() error
}

// Matches reports whether r satisfies the filters of q.
func (q Query) Matches(r PlanRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Feasible != nil && r.Outcome.Feasible != *q.Feasible {
		return false
	}
	if q.Plant != "" {
		if _, ok := r.Plan.Get(q.Plant); !ok {
			return false
		}
	}
	return true
}

func (q Query) full(n int) bool { return q.Limit > 0 && n >= q.Limit }

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, PlanRecord) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]PlanRecord, error) { return nil, nil }
func (NopStore) Close() error                                       { return nil }
