package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallevents/gatekeeper/internal/config"
	"github.com/smallevents/gatekeeper/internal/event"
	"github.com/smallevents/gatekeeper/internal/forms"
	"github.com/smallevents/gatekeeper/internal/observability"
	obsmiddleware "github.com/smallevents/gatekeeper/internal/observability/logger"
	obstracing "github.com/smallevents/gatekeeper/internal/observability/tracing"
	"github.com/smallevents/gatekeeper/internal/providers"
	"github.com/smallevents/gatekeeper/internal/ratelimit"
	"github.com/smallevents/gatekeeper/internal/submission"
	"github.com/smallevents/gatekeeper/internal/ticket"
	ticketdomain "github.com/smallevents/gatekeeper/internal/ticket/domain"
	"github.com/smallevents/gatekeeper/internal/user"
	"github.com/smallevents/gatekeeper/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	fx.Provide(provideAliasSource),
	fx.Provide(telemetry.NewMetrics),
	submission.Module,
	event.Module,
	user.Module,
	ticket.Module,
	providers.Module,
	ratelimit.Module,
	forms.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func provideAliasSource(holder *config.FormTemplatesHolder) submission.AliasSource {
	return holder
}

func NewEngine(obsCfg observability.Config, metrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(metricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, metrics *telemetry.Metrics) *gin.Engine {
	return NewEngine(obsCfg, metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func metricsMiddleware(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" || route == "/metrics" {
			return
		}
		m.ObserveAPIRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	normalizer *submission.Normalizer
	ticketSvc  ticketdomain.Service
	limiter    *ratelimit.TokenBucket
	metrics    *telemetry.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	Normalizer *submission.Normalizer
	TicketSvc  ticketdomain.Service
	Limiter    *ratelimit.TokenBucket `optional:"true"`
	Metrics    *telemetry.Metrics
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		normalizer: p.Normalizer,
		ticketSvc:  p.TicketSvc,
		limiter:    p.Limiter,
		metrics:    p.Metrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/webhooks/forms", s.webhookRateLimit(), s.handleFormWebhook)
	v1.POST("/checkin", s.handleCheckIn)
	v1.GET("/tickets/:invoice_no", s.handleTicketLookup)
	v1.GET("/events/:event_id/tickets", s.handleTicketSearch)
}
