// Package productionplan exposes the planner over HTTP.
package productionplan

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/kilianp07/prodplan/app"
	"github.com/kilianp07/prodplan/core/logger"
	"github.com/kilianp07/prodplan/core/planlog"
	"github.com/kilianp07/prodplan/core/validation"
	infralogger "github.com/kilianp07/prodplan/infra/logger"
)

// HeaderFeasible reports whether the returned plan covers the load.
const HeaderFeasible = "X-Plan-Feasible"

// HeaderPlanID carries the identifier of the computed plan.
const HeaderPlanID = "X-Plan-Id"

// Handler serves the production plan endpoints.
type Handler struct {
	svc          *app.PlanService
	log          logger.Logger
	maxBodyBytes int64
}

// NewHandler returns a Handler backed by svc. A non-positive maxBodyBytes
// leaves the body size unbounded.
func NewHandler(svc *app.PlanService, log logger.Logger, maxBodyBytes int64) *Handler {
	if log == nil {
		log = infralogger.NopLogger{}
	}
	return &Handler{svc: svc, log: log, maxBodyBytes: maxBodyBytes}
}

// CreatePlan handles POST /productionplan. The body is decoded into generic
// values so the validator can report missing fields and wrong types by path.
func (h *Handler) CreatePlan(c *gin.Context) {
	body := io.Reader(c.Request.Body)
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.svc.Reject(CodeBodyTooLarge, "")
			abortWithError(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge,
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", "")
			return
		}
		h.svc.Reject(CodeInvalidJSON, "")
		badRequest(c, CodeInvalidJSON, "read request body: "+err.Error(), "")
		return
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		h.svc.Reject(CodeInvalidJSON, "")
		badRequest(c, CodeInvalidJSON, "request body is not valid JSON: "+err.Error(), "")
		return
	}
	doc, ok := v.(map[string]any)
	if !ok {
		h.svc.Reject(CodeInvalidJSON, "")
		badRequest(c, CodeInvalidJSON, "request body must be a JSON object", "")
		return
	}

	res, err := h.svc.Compute(c.Request.Context(), doc)
	if err != nil {
		if code, path, ok := validation.Classify(err); ok {
			badRequest(c, code, err.Error(), path)
			return
		}
		abortWithError(c, http.StatusInternalServerError, CodeInternalError, err.Error(), "")
		return
	}
	c.Header(HeaderFeasible, strconv.FormatBool(res.Outcome.Feasible))
	c.Header(HeaderPlanID, res.ID)
	c.JSON(http.StatusOK, res.Plan)
}

// ListPlans handles GET /api/plans?start=&end=&plant=&feasible=&limit=.
// Times are RFC3339.
func (h *Handler) ListPlans(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		badRequest(c, CodeInvalidQuery, err.Error(), "")
		return
	}
	records, err := h.svc.History(c.Request.Context(), q)
	if err != nil {
		h.log.Errorf("query plans: %v", err)
		abortWithError(c, http.StatusInternalServerError, CodeInternalError, err.Error(), "")
		return
	}
	if records == nil {
		records = []planlog.PlanRecord{}
	}
	c.JSON(http.StatusOK, records)
}

type queryError struct{ param, reason string }

func (e *queryError) Error() string { return "query parameter " + e.param + " " + e.reason }

func parseQuery(c *gin.Context) (planlog.Query, error) {
	var q planlog.Query
	parseTime := func(param string) (time.Time, error) {
		s := c.Query(param)
		if s == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, &queryError{param, "must be an RFC3339 time"}
		}
		return t, nil
	}
	var err error
	if q.Start, err = parseTime("start"); err != nil {
		return q, err
	}
	if q.End, err = parseTime("end"); err != nil {
		return q, err
	}
	q.Plant = c.Query("plant")
	if s := c.Query("feasible"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, &queryError{"feasible", "must be a boolean"}
		}
		q.Feasible = &b
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, &queryError{"limit", "must be a non-negative integer"}
		}
		q.Limit = n
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return q, errors.New("query parameter end is before start")
	}
	return q, nil
}
