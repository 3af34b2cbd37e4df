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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/college-timetable-api/api/swagger"
	"github.com/noah-isme/college-timetable-api/internal/handler"
	"github.com/noah-isme/college-timetable-api/internal/middleware"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/repository"
	"github.com/noah-isme/college-timetable-api/internal/service"
	"github.com/noah-isme/college-timetable-api/pkg/cache"
	"github.com/noah-isme/college-timetable-api/pkg/config"
	"github.com/noah-isme/college-timetable-api/pkg/database"
	"github.com/noah-isme/college-timetable-api/pkg/logger"
	"github.com/noah-isme/college-timetable-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/college-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/college-timetable-api/pkg/middleware/requestid"
)

// @title College Timetable API
// @version 1.0.0
// @description Timetable generation and publishing service for college departments
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	// Repositories.
	subjectRepo := repository.NewSubjectRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	configRepo := repository.NewScheduleConfigRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	activeRepo := repository.NewActiveTimetableRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	// Services.
	metricsSvc := service.NewMetricsService()
	auditSvc := service.NewAuditService(auditRepo, logr, service.AuditServiceConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
	})
	auditSvc.Start(ctx)
	defer auditSvc.Stop()

	notificationCfg := service.NotificationServiceConfig{
		PortalURL:  cfg.Mail.PortalURL,
		Workers:    cfg.Mail.Workers,
		BufferSize: cfg.Mail.BufferSize,
	}
	var notificationSvc *service.NotificationService
	if cfg.Mail.Enabled {
		notificationSvc = service.NewNotificationService(mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}), logr, notificationCfg)
	} else {
		notificationSvc = service.NewNotificationService(nil, logr, notificationCfg)
	}
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	authSvc := service.NewAuthService(userRepo, auditSvc, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	subjectSvc := service.NewSubjectService(subjectRepo, staffRepo, nil, logr)
	staffSvc := service.NewStaffService(staffRepo, notificationSvc, nil, logr)
	configSvc := service.NewScheduleConfigService(configRepo, nil, logr)
	timetableSvc := service.NewTimetableService(
		subjectRepo, configRepo, timetableRepo, activeRepo, cacheRepo, timetableRepo,
		metricsSvc, nil, logr,
		service.TimetableServiceConfig{
			Generator: service.GeneratorOptions{
				ExecutionBudget:     cfg.Scheduler.ExecutionBudget,
				MaxPerDayPerSubject: cfg.Scheduler.MaxPerDayPerSubject,
				RoomPoolSize:        cfg.Scheduler.RoomPoolSize,
				RoomNumberBase:      cfg.Scheduler.RoomNumberBase,
			},
			CacheTTL: cfg.Cache.ActiveTTL,
		},
	)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	staffHandler := handler.NewStaffHandler(staffSvc)
	configHandler := handler.NewScheduleConfigHandler(configSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	// Student-facing reads stay public.
	api.GET("/timetables/active", timetableHandler.GetActive)
	api.GET("/timetables/export", timetableHandler.Export)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/timetables/versions", timetableHandler.ListVersions)
	authed.GET("/timetables/versions/:version", timetableHandler.GetVersion)
	authed.GET("/subjects", subjectHandler.List)
	authed.GET("/subjects/:id", subjectHandler.Get)
	authed.GET("/staff", staffHandler.List)
	authed.GET("/staff/:id", staffHandler.Get)
	authed.GET("/schedule-configs", configHandler.List)
	authed.GET("/schedule-configs/:semester", configHandler.GetForSemester)

	admin := authed.Group("", middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/timetables/generate",
		middleware.Audit(auditSvc, models.AuditActionTimetableGenerate, "timetable"),
		timetableHandler.Generate)
	admin.POST("/timetables/activate",
		middleware.Audit(auditSvc, models.AuditActionTimetableActivate, "timetable"),
		timetableHandler.Activate)
	admin.POST("/subjects",
		middleware.Audit(auditSvc, models.AuditActionSubjectWrite, "subject"),
		subjectHandler.Create)
	admin.PUT("/subjects/:id",
		middleware.Audit(auditSvc, models.AuditActionSubjectWrite, "subject"),
		subjectHandler.Update)
	admin.DELETE("/subjects/:id",
		middleware.Audit(auditSvc, models.AuditActionSubjectWrite, "subject"),
		subjectHandler.Delete)
	admin.POST("/staff",
		middleware.Audit(auditSvc, models.AuditActionStaffWrite, "staff"),
		staffHandler.Create)
	admin.PUT("/staff/:id",
		middleware.Audit(auditSvc, models.AuditActionStaffWrite, "staff"),
		staffHandler.Update)
	admin.DELETE("/staff/:id",
		middleware.Audit(auditSvc, models.AuditActionStaffWrite, "staff"),
		staffHandler.Delete)
	admin.PUT("/schedule-configs",
		middleware.Audit(auditSvc, models.AuditActionConfigWrite, "schedule_config"),
		configHandler.Upsert)
	admin.GET("/audit-logs", auditHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
