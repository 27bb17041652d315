package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/activity-tracker-api/api/swagger"
	"github.com/noah-isme/activity-tracker-api/internal/handler"
	internalmiddleware "github.com/noah-isme/activity-tracker-api/internal/middleware"
	"github.com/noah-isme/activity-tracker-api/internal/models"
	"github.com/noah-isme/activity-tracker-api/internal/repository"
	"github.com/noah-isme/activity-tracker-api/internal/service"
	"github.com/noah-isme/activity-tracker-api/pkg/cache"
	"github.com/noah-isme/activity-tracker-api/pkg/config"
	"github.com/noah-isme/activity-tracker-api/pkg/database"
	"github.com/noah-isme/activity-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/activity-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/activity-tracker-api/pkg/middleware/requestid"
	"github.com/noah-isme/activity-tracker-api/pkg/scheduler"
)

// @title Activity Tracker API
// @version 1.0.0
// @description Daily checklist tracking for operations teams
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	loc := cfg.Materialize.Location()
	validate := service.NewValidator()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled && redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	masterRepo := repository.NewMasterActivityRepository(db)
	dailyRepo := repository.NewDailyActivityRepository(db)
	updateRepo := repository.NewActivityUpdateRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, cacheSvc, validate, logr)
	materializer := service.NewMaterializerService(masterRepo, dailyRepo, cacheSvc, metrics, logr)
	masterSvc := service.NewMasterActivityService(masterRepo, updateRepo, cacheSvc, validate, logr)
	dailySvc := service.NewDailyActivityService(dailyRepo, updateRepo, cacheSvc, metrics, validate, logr)
	boardSvc := service.NewBoardService(dailyRepo, updateRepo, materializer, cacheSvc, metrics, logr)
	reportSvc := service.NewReportService(reportRepo, userRepo, cacheSvc, logr, service.ReportConfig{
		MaxRangeDays: cfg.Reports.MaxRangeDays,
		CacheTTL:     cfg.Reports.CacheTTL,
	})

	clock := handler.NewClock(loc)
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	masterHandler := handler.NewMasterActivityHandler(masterSvc, clock)
	dailyHandler := handler.NewDailyActivityHandler(dailySvc, materializer, clock)
	boardHandler := handler.NewBoardHandler(boardSvc, clock)
	reportHandler := handler.NewReportHandler(reportSvc, clock)
	metricsHandler := handler.NewMetricsHandler(metrics, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	admin := internalmiddleware.RequireRoles(models.RoleAdmin)

	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/users", userHandler.List)
	secured.POST("/users", admin, userHandler.Create)

	masters := secured.Group("/master-activities")
	masters.GET("", masterHandler.List)
	masters.POST("", admin, masterHandler.Create)
	masters.GET("/:id", masterHandler.Get)
	masters.PUT("/:id", admin, masterHandler.Update)
	masters.POST("/:id/deactivate", admin, masterHandler.Deactivate)
	masters.POST("/:id/activate", admin, masterHandler.Activate)
	masters.GET("/:id/history", masterHandler.History)

	daily := secured.Group("/daily-activities")
	daily.POST("/materialize", admin, dailyHandler.Materialize)
	daily.GET("/:id", dailyHandler.Get)
	daily.GET("/:id/updates", dailyHandler.ListUpdates)
	daily.POST("/:id/updates", dailyHandler.RecordUpdate)

	secured.GET("/board", boardHandler.Get)
	secured.PUT("/board/reorder", boardHandler.Reorder)

	secured.GET("/reports", reportHandler.Get)
	secured.GET("/reports/export", reportHandler.Export)

	var materializeJob *scheduler.Scheduler
	if cfg.Materialize.SchedulerEnabled {
		materializeJob = scheduler.New("materialize-daily-activities", func(ctx context.Context) error {
			_, err := materializer.Materialize(ctx, service.Today(loc), service.TriggerScheduler)
			return err
		}, scheduler.Options{
			Spec:         cfg.Materialize.CronSpec,
			Location:     loc,
			RunOnStartup: cfg.Materialize.RunOnStartup,
		}, logr)
		if err := materializeJob.Start(); err != nil {
			logr.Fatal("failed to start scheduler", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if materializeJob != nil {
		materializeJob.Stop(ctx)
	}
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
