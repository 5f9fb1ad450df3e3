package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edupulse/presence-api/api/swagger"
	"github.com/edupulse/presence-api/internal/handler"
	internaljobs "github.com/edupulse/presence-api/internal/jobs"
	"github.com/edupulse/presence-api/internal/middleware"
	"github.com/edupulse/presence-api/internal/notification"
	"github.com/edupulse/presence-api/internal/repository"
	"github.com/edupulse/presence-api/internal/service"
	"github.com/edupulse/presence-api/pkg/cache"
	"github.com/edupulse/presence-api/pkg/config"
	"github.com/edupulse/presence-api/pkg/database"
	"github.com/edupulse/presence-api/pkg/logger"
	corsmiddleware "github.com/edupulse/presence-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edupulse/presence-api/pkg/middleware/requestid"
	"github.com/edupulse/presence-api/pkg/storage"
)

// @title EduPulse Presence API
// @version 1.0.0
// @description Classroom attendance verification with QR session tokens and BLE proximity analysis
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
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	archive, err := storage.NewArchive(cfg.Exports.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export archive", "error", err)
	}
	signer := storage.NewLinkSigner(cfg.Exports.LinkSecret, cfg.Exports.LinkTTL)

	attendanceRepo := repository.NewAttendanceRepository(db)
	occurrenceRepo := repository.NewOccurrenceRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	proximityLogRepo := repository.NewProximityLogRepository(db)

	metricsSvc := service.NewMetricsService()
	notifier := notification.NewSMTPNotifier(cfg.Notification, logr)

	tokenSvc := service.NewTokenService(occurrenceRepo, attendanceRepo, cfg.Attendance.TokenTTL, metricsSvc, logr)
	deviceSvc := service.NewDeviceService(deviceRepo, notifier, metricsSvc, cfg.DeviceLinking.ApprovalWindowMonths, nil, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, deviceSvc, tokenSvc, service.NewProximityAnalyzer(), proximityLogRepo, metricsSvc, nil, logr)
	occurrenceSvc := service.NewOccurrenceService(occurrenceRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	referenceSvc := service.NewReferenceService(referenceRepo, proximityLogRepo, logr)
	reportSvc := service.NewReportService(reportRepo, attendanceRepo, archive, signer, nil, logr)
	presentationSvc := service.NewPresentationService(redisClient, cfg.Presentations.CacheTTL, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.Register(r, cfg, handler.Handlers{
		Attendance:   handler.NewAttendanceHandler(attendanceSvc),
		Occurrence:   handler.NewOccurrenceHandler(occurrenceSvc, tokenSvc),
		Device:       handler.NewDeviceHandler(deviceSvc),
		Student:      handler.NewStudentHandler(studentSvc),
		Reference:    handler.NewReferenceHandler(referenceSvc),
		Report:       handler.NewReportHandler(reportSvc),
		Presentation: handler.NewPresentationHandler(presentationSvc),
		Metrics:      handler.NewMetricsHandler(metricsSvc),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	linkJob := internaljobs.NewDeviceLinkJob(deviceSvc, cfg.DeviceLinking.JobInterval, logr)
	linkJob.Start(context.Background())
	defer linkJob.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
