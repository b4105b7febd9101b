package productionplan

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/kilianp07/prodplan/core/logger"
	coremon "github.com/kilianp07/prodplan/core/monitoring"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Mode is the gin mode. Empty keeps gin's current mode.
	Mode        string
	CORSOrigins []string
	// APIToken protects the plan history when set.
	APIToken string
	// MetricsPath exposes Prometheus metrics when set.
	MetricsPath string
}

// NewRouter builds the HTTP handler serving h.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	r := gin.New()
	r.Use(RequestLogger(h.log), Recovery(h.log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/productionplan", h.CreatePlan)

	api := r.Group("/api")
	api.Use(BearerAuth(opts.APIToken))
	api.GET("/plans", h.ListPlans)

	if opts.MetricsPath != "" {
		r.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, CodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path, "")
	})

	if len(opts.CORSOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{HeaderFeasible, HeaderPlanID},
	}).Handler(r)
}

// Recovery turns panics into a structured 500 and reports them to the
// configured monitor.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}
		log.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		coremon.Capture(err, coremon.Event{Component: coremon.ComponentHTTP, Route: c.FullPath()})
		abortWithError(c, http.StatusInternalServerError, CodeInternalError, "an unexpected error occurred", "")
	})
}

// RequestLogger logs one structured line per request.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("request", map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
			"client_ip":   c.ClientIP(),
		})
	}
}

// BearerAuth requires "Authorization: Bearer <token>" when token is non-empty.
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		want := []byte("Bearer " + token)
		if subtle.ConstantTimeCompare([]byte(c.GetHeader("Authorization")), want) != 1 {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "missing or invalid bearer token", "")
			return
		}
		c.Next()
	}
}
