package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/dsicola/academic-core-api/api/swagger"
	"github.com/dsicola/academic-core-api/internal/handler"
	"github.com/dsicola/academic-core-api/internal/middleware"
	"github.com/dsicola/academic-core-api/internal/models"
	"github.com/dsicola/academic-core-api/internal/repository"
	"github.com/dsicola/academic-core-api/internal/service"
	"github.com/dsicola/academic-core-api/pkg/cache"
	"github.com/dsicola/academic-core-api/pkg/config"
	"github.com/dsicola/academic-core-api/pkg/database"
	"github.com/dsicola/academic-core-api/pkg/jobs"
	"github.com/dsicola/academic-core-api/pkg/logger"
	corsmiddleware "github.com/dsicola/academic-core-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dsicola/academic-core-api/pkg/middleware/requestid"
)

// @title Academic Core API
// @version 1.0.0
// @description Academic year lifecycle, consolidation and closure gate service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, window cache disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	yearRepo := repository.NewAcademicYearRepository(db)
	unitRepo := repository.NewTeachingUnitRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	historyRepo := repository.NewHistoricalRecordRepository(db)
	windowRepo := repository.NewReopeningWindowRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	groupRepo := repository.NewClassGroupRepository(db)
	configRepo := repository.NewInstitutionConfigRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	auditSvc := service.NewAuditService(auditRepo, logr)
	notificationSvc := service.NewNotificationService(service.LogDispatcher{Logger: logr}, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	}, logr)

	frequencySvc := service.NewFrequencyService(unitRepo, attendanceRepo, logr)
	gradeSvc := service.NewGradeCalcService(unitRepo, evaluationRepo, configRepo, logr)
	consolidationSvc := service.NewConsolidationService(
		yearRepo, unitRepo, historyRepo, groupRepo, enrollmentRepo,
		frequencySvc, gradeSvc, configRepo, auditSvc, metricsSvc, logr)
	yearSvc := service.NewYearService(yearRepo, consolidationSvc, auditSvc, notificationSvc, logr)
	reopeningSvc := service.NewReopeningService(
		windowRepo, yearRepo, cacheRepo, cfg.Reopening.CacheTTL,
		auditSvc, notificationSvc, metricsSvc, logr)
	resolver := service.NewYearResolver(yearRepo, unitRepo, groupRepo, attendanceRepo, evaluationRepo, enrollmentRepo)
	progressionSvc := service.NewProgressionService(enrollmentRepo, historyRepo, groupRepo, configRepo, auditSvc, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, yearRepo, groupRepo, progressionSvc, auditSvc, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, unitRepo)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, unitRepo)
	unitSvc := service.NewTeachingUnitService(unitRepo)
	historySvc := service.NewHistoryService(historyRepo)

	gate := middleware.NewClosureGate(resolver, reopeningSvc, configRepo, auditSvc, metricsSvc, cfg.Gate.OverrideHeader, logr)

	// Handlers.
	yearHandler := handler.NewYearHandler(yearSvc)
	reopeningHandler := handler.NewReopeningHandler(reopeningSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, frequencySvc)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc, gradeSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	unitHandler := handler.NewTeachingUnitHandler(unitSvc)
	historyHandler := handler.NewHistoryHandler(historySvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	guarded := gate.Handler()

	years := api.Group("/academic-years")
	{
		years.GET("", yearHandler.List)
		years.GET("/:id", yearHandler.Get)
		years.POST("", middleware.RequireCapability(models.CapabilityYearManage), yearHandler.Create)
		years.POST("/:id/close", middleware.RequireCapability(models.CapabilityYearClose), yearHandler.Close)
	}

	windows := api.Group("/reopening-windows")
	{
		windows.GET("", reopeningHandler.List)
		windows.GET("/:id", reopeningHandler.Get)
		windows.POST("", middleware.RequireCapability(models.CapabilityReopeningManage), reopeningHandler.Create)
		windows.POST("/:id/terminate", middleware.RequireCapability(models.CapabilityReopeningManage), reopeningHandler.Terminate)
	}

	api.GET("/lessons", attendanceHandler.ListLessons)
	api.POST("/lessons", middleware.RequireCapability(models.CapabilityAcademicWrite), guarded, attendanceHandler.CreateLesson)
	api.POST("/attendance", middleware.RequireCapability(models.CapabilityAcademicWrite), guarded, attendanceHandler.RecordMark)

	api.GET("/evaluations", evaluationHandler.ListByStudent)
	api.POST("/evaluations", middleware.RequireCapability(models.CapabilityAcademicWrite), guarded, evaluationHandler.Create)
	api.PATCH("/evaluations/:evaluationId", middleware.RequireCapability(models.CapabilityAcademicWrite), guarded, evaluationHandler.UpdateScore)
	api.POST("/grades/recovery", middleware.RequireCapability(models.CapabilityAcademicWrite), guarded, evaluationHandler.RecordRecovery)

	api.GET("/enrollments", enrollmentHandler.List)
	api.GET("/enrollments/:enrollmentId", enrollmentHandler.Get)
	api.POST("/enrollments", middleware.RequireCapability(models.CapabilityProgressionManage), guarded, enrollmentHandler.Create)

	api.GET("/teaching-units", unitHandler.ListByYear)
	api.GET("/teaching-units/:unitId", unitHandler.Get)
	api.PATCH("/teaching-units/:unitId", middleware.RequireCapability(models.CapabilityYearManage), guarded, unitHandler.Update)
	api.GET("/teaching-units/:unitId/students/:studentId/frequency", attendanceHandler.Frequency)
	api.GET("/teaching-units/:unitId/students/:studentId/grade", evaluationHandler.GradeSummary)

	api.GET("/historical-records", historyHandler.List)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	go runExpiryScheduler(ctx, reopeningSvc, cfg.Reopening.ExpiryInterval, logr.Sugar())

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// runExpiryScheduler periodically sweeps lapsed reopening windows. The sweep
// is safe to re-run at any time.
func runExpiryScheduler(ctx context.Context, windows *service.ReopeningService, interval time.Duration, logr *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := windows.ExpireDue(ctx, ""); err != nil {
				logr.Errorw("window expiry sweep failed", "error", err)
			}
		}
	}
}
