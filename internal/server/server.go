package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tomasz-trela/catermetrics/internal/cache"
	"github.com/tomasz-trela/catermetrics/internal/config"
	"github.com/tomasz-trela/catermetrics/internal/engine"
	obscontext "github.com/tomasz-trela/catermetrics/internal/observability/context"
	"github.com/tomasz-trela/catermetrics/internal/observability/logger"
)

// Server exposes the batch reports over HTTP.
type Server struct {
	cfg    config.Config
	log    *zap.Logger
	genID  *snowflake.Node
	engine *engine.Engine

	reports *cache.TTLCache[string, engine.BatchReport]
	limiter *rateLimiter
}

type Param struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	GenID  *snowflake.Node
	Engine *engine.Engine
}

func NewServer(p Param) *Server {
	return &Server{
		cfg:     p.Config,
		log:     p.Log.Named("server"),
		genID:   p.GenID,
		engine:  p.Engine,
		reports: cache.NewTTLCache[string, engine.BatchReport](),
		limiter: newRateLimiter(p.Config.RateLimit, p.Config.RateWindow),
	}
}

// NewEngine builds the gin engine with the shared middleware stack.
func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	e := gin.New()
	e.Use(gin.Recovery())
	return e
}

// RegisterAPIRoutes mounts the report endpoints.
func (s *Server) RegisterAPIRoutes(e *gin.Engine) {
	e.Use(s.requestID())
	e.Use(s.requestLog())

	e.GET("/healthz", s.Healthz)
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := e.Group("/api")
	reports := api.Group("/reports")
	reports.Use(s.rateLimit())
	reports.GET("/reconciliation", s.GetReconciliationReport)
	reports.GET("/rfm", s.GetRFMReport)
	reports.GET("/cooks", s.GetCookReport)
	reports.GET("/pairings", s.GetPairingReport)
	reports.GET("/forecast", s.GetForecastReport)
	reports.GET("/courses/popularity", s.GetCoursePopularity)
	reports.GET("/courses/complaints", s.GetCourseComplaints)
	reports.GET("/courses/hidden-gems", s.GetHiddenGems)
	reports.GET("/deliveries", s.GetDeliveryReport)
	reports.GET("/diagnostics", s.GetDiagnostics)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = s.genID.Generate().String()
		}
		c.Set("request_id", id)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), id))
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestLog logs one line per request through the context-aware logger,
// so trace correlation fields appear whenever the request carries a span.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.FromContext(c.Request.Context()).Named("server").Info("request",
			zap.String("request_id", obscontext.RequestIDFromGin(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
}

// Healthz reports liveness.
func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// batch returns the cached batch report, computing it when stale. The run
// is detached from the requesting context: one disconnecting client must
// not cancel the shared computation other waiters are blocked on, nor
// cache a degraded report for the full TTL.
func (s *Server) batch(ctx context.Context) (engine.BatchReport, error) {
	if s.engine == nil {
		return engine.BatchReport{}, ErrServiceUnavailable
	}
	runCtx := context.WithoutCancel(ctx)
	return s.reports.GetOrCompute("batch", s.cfg.ReportCacheTTL, func() (engine.BatchReport, error) {
		s.log.Debug("recomputing batch report")
		return s.engine.Run(runCtx)
	})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, e *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: e,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
