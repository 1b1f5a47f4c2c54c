// Package api exposes settlement dates, forward rates, customer quotes and
// curve uploads over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fx-forward-desk/internal/observability"
	"fx-forward-desk/internal/pricing"
	"fx-forward-desk/internal/stream"
)

// UserHeader carries the caller's user ID. Absent means an anonymous quote.
const UserHeader = "X-User-ID"

// Options configures the HTTP surface.
type Options struct {
	Pricing *pricing.Service
	Hub     *stream.Hub // nil disables /ws/rates
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// Server holds the handlers' dependencies.
type Server struct {
	svc     *pricing.Service
	hub     *stream.Hub
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	s := &Server{
		svc:     opts.Pricing,
		hub:     opts.Hub,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("api")
	if s.metrics == nil {
		s.metrics = observability.DefaultMetrics
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "fxdesk",
			"timestamp": time.Now().Unix(),
		})
	})
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/pairs", s.listPairs)

		v1.GET("/settlement/spot", s.spotDate)
		v1.GET("/settlement/tenors", s.tenorLadder)
		v1.GET("/settlement/convert", s.convert)

		v1.POST("/forward/calculate", s.calculate)
		v1.GET("/forward/:pair", s.forwardRate)

		v1.GET("/customer-rates/:product/:pair", s.customerRate)
		v1.GET("/forward-quotes/:pair", s.forwardQuote)
		v1.GET("/swap-quotes/:pair", s.swapQuote)

		v1.POST("/swap-points/:pair", s.saveSwapPoint)
		v1.GET("/swap-points/:pair", s.listSwapPoints)
		v1.POST("/on-tn/:pair", s.saveOnTn)

		if s.hub != nil {
			v1.GET("/ws/rates", func(c *gin.Context) {
				stream.ServeWs(s.hub, c.Writer, c.Request)
			})
		}
	}
	return r
}

// observe records request latency by route and logs each request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		s.metrics.HTTPRequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
	}
}
