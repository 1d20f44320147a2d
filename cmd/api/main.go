package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edutec/disponibilidad-api/api/swagger"
	"github.com/edutec/disponibilidad-api/internal/handler"
	"github.com/edutec/disponibilidad-api/internal/middleware"
	"github.com/edutec/disponibilidad-api/internal/repository"
	"github.com/edutec/disponibilidad-api/internal/service"
	"github.com/edutec/disponibilidad-api/pkg/cache"
	"github.com/edutec/disponibilidad-api/pkg/config"
	"github.com/edutec/disponibilidad-api/pkg/database"
	"github.com/edutec/disponibilidad-api/pkg/jobs"
	"github.com/edutec/disponibilidad-api/pkg/logger"
	corsmiddleware "github.com/edutec/disponibilidad-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edutec/disponibilidad-api/pkg/middleware/requestid"
	"github.com/edutec/disponibilidad-api/pkg/storage"
)

// @title Disponibilidad Docente API
// @version 1.0.0
// @description Registro de disponibilidad horaria de docentes
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	availabilityRepo := repository.NewAvailabilityRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)
	feedRepo := repository.NewFeedRepository(redisClient, cfg.Feed.Channel, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	adminSvc := service.NewAdminService(adminRepo, cfg.Admin.TokenSecret, cfg.Admin.TokenTTL, nil, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, feedRepo, cacheRepo, metricsSvc, nil, logr)
	feedSvc := service.NewFeedService(feedRepo, cfg.Feed.ClientBuffer, logr)
	go feedSvc.Run(ctx)

	var exportSvc *service.ExportService
	exportQueue := jobs.NewQueue("exports", func(jobCtx context.Context, job jobs.Job) error {
		return exportSvc.HandleJob(jobCtx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportSvc = service.NewExportService(exportJobRepo, availabilityRepo, exportQueue, exportStorage, signer, metricsSvc, cfg.Exports.SignedURLTTL, logr)
	exportQueue.Start(ctx)
	defer exportQueue.Stop()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Exports.CleanupSchedule, exportSvc.Cleanup); err != nil {
		logr.Sugar().Fatalw("invalid export cleanup schedule", "schedule", cfg.Exports.CleanupSchedule, "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := buildRouter(cfg, logr,
		handler.NewAvailabilityHandler(availabilitySvc),
		handler.NewAdminHandler(adminSvc),
		handler.NewExportHandler(exportSvc, exportStorage),
		handler.NewFeedHandler(feedSvc, metricsSvc),
		handler.NewMetricsHandler(metricsSvc),
		middleware.Admin(adminSvc),
		middleware.Metrics(metricsSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func buildRouter(
	cfg *config.Config,
	logr *zap.Logger,
	availabilities *handler.AvailabilityHandler,
	admins *handler.AdminHandler,
	exports *handler.ExportHandler,
	feed *handler.FeedHandler,
	metrics *handler.MetricsHandler,
	adminGate gin.HandlerFunc,
	metricsMiddleware gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(metricsMiddleware)

	r.GET("/health", metrics.Health)
	r.GET("/ready", metrics.Ready)
	r.GET("/metrics", metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/admin/verificar", admins.Verify)
		api.POST("/disponibilidades", availabilities.Save)
		api.GET("/export/:token", exports.Download)

		protected := api.Group("")
		protected.Use(adminGate)
		{
			protected.GET("/disponibilidades", availabilities.List)
			protected.GET("/disponibilidades/feed", feed.Stream)
			protected.GET("/disponibilidades/:id", availabilities.Get)
			protected.DELETE("/disponibilidades/:id", availabilities.Delete)
			protected.POST("/exportaciones", exports.Create)
			protected.GET("/exportaciones/:id", exports.Status)
		}
	}

	return r
}
