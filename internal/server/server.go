package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paperforge/paperforge/internal/authorization"
	"github.com/paperforge/paperforge/internal/config"
	expirationdomain "github.com/paperforge/paperforge/internal/expiration/domain"
	featuredomain "github.com/paperforge/paperforge/internal/feature/domain"
	obsmetrics "github.com/paperforge/paperforge/internal/observability/metrics"
	obstracing "github.com/paperforge/paperforge/internal/observability/tracing"
	plandomain "github.com/paperforge/paperforge/internal/plan/domain"
	subscriptiondomain "github.com/paperforge/paperforge/internal/subscription/domain"
	usagedomain "github.com/paperforge/paperforge/internal/usage/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(httpMetrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

// RequestIDMiddleware assigns each request an ID for log correlation,
// honoring an inbound X-Request-ID from the edge proxy.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	authzSvc        authorization.Service
	subscriptionSvc subscriptiondomain.Service
	usageSvc        usagedomain.Service
	featureSvc      featuredomain.Service
	scanSvc         expirationdomain.Service
	planRepo        plandomain.Repository
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	AuthzSvc        authorization.Service
	SubscriptionSvc subscriptiondomain.Service
	UsageSvc        usagedomain.Service
	FeatureSvc      featuredomain.Service
	ScanSvc         expirationdomain.Service
	PlanRepo        plandomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("http"),
		genID:           p.GenID,
		authzSvc:        p.AuthzSvc,
		subscriptionSvc: p.SubscriptionSvc,
		usageSvc:        p.UsageSvc,
		featureSvc:      p.FeatureSvc,
		scanSvc:         p.ScanSvc,
		planRepo:        p.PlanRepo,
	}

	svc.registerAPIRoutes()
	svc.registerInternalRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Plan catalog (public) --------
	v1.GET("/plans", s.ListPlans)
	v1.GET("/plans/:id/features", s.ListPlanFeatures)

	// -------- Caller entitlement --------
	me := v1.Group("/me", s.SessionRequired())
	{
		me.GET("/entitlement", s.GetEntitlement)
		me.GET("/subscriptions", s.ListSubscriptions)
		me.GET("/quota/:resource", s.GetQuota)
		me.GET("/usage/:resource", s.GetUsage)
		me.POST("/usage/:resource", s.ConsumeUsage)
	}

	// -------- Feature catalog --------
	features := v1.Group("/features", s.SessionRequired())
	{
		features.GET("", s.ListFeatures)
		features.POST("", s.authorizeAction(authorization.ObjectFeature, authorization.ActionFeatureCreate), s.CreateFeature)
		features.DELETE("/:id", s.authorizeAction(authorization.ObjectFeature, authorization.ActionFeatureDelete), s.DeleteFeature)
		features.POST("/:id/archive", s.authorizeAction(authorization.ObjectFeature, authorization.ActionFeatureUpdate), s.ArchiveFeature)
	}
}

func (s *Server) registerInternalRoutes() {
	internal := s.engine.Group("/internal", s.CronSecretRequired())

	internal.POST("/cron/expiration-scan", s.RunExpirationScan)
}
