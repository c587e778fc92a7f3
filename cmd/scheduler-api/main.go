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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/course-scheduler-api/api/swagger"
	"github.com/noah-isme/course-scheduler-api/internal/handler"
	"github.com/noah-isme/course-scheduler-api/internal/middleware"
	"github.com/noah-isme/course-scheduler-api/internal/repository"
	"github.com/noah-isme/course-scheduler-api/internal/service"
	"github.com/noah-isme/course-scheduler-api/internal/solver"
	"github.com/noah-isme/course-scheduler-api/pkg/cache"
	"github.com/noah-isme/course-scheduler-api/pkg/config"
	"github.com/noah-isme/course-scheduler-api/pkg/database"
	"github.com/noah-isme/course-scheduler-api/pkg/jobs"
	"github.com/noah-isme/course-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-scheduler-api/pkg/middleware/requestid"
)

// @title Course Scheduler API
// @version 1.0.0
// @description Constraint-based course scheduling and conflict management
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	conflictRepo := repository.NewConflictRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	notifications := service.NewNotificationService(logr, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})

	solverSvc := service.NewSolverService(
		teacherRepo, classroomRepo, timeSlotRepo, offeringRepo, studentRepo,
		scheduleRepo, db,
		validate, logr, metrics,
		service.SolverServiceConfig{
			DefaultStrategy: cfg.Solver.DefaultStrategy,
			Workers:         cfg.Solver.Workers,
			TimeBudget:      cfg.Solver.TimeBudget,
			MaxIterations:   cfg.Solver.MaxIterations,
			Weights: solver.ScoreWeights{
				Teacher:   cfg.Constraints.TeacherScoreWeight,
				Classroom: cfg.Constraints.ClassroomScoreWeight,
				TimeSlot:  cfg.Constraints.TimeSlotScoreWeight,
			},
			AllowOversubscription:    cfg.Constraints.AllowOversubscription,
			MaxOversubscriptionRatio: cfg.Constraints.MaxOversubscriptionRatio,
			MaxConsecutiveHours:      cfg.Constraints.MaxConsecutiveHours,
			MinBreakBetweenClasses:   cfg.Constraints.MinBreakBetweenClasses,
		},
	)

	detectionSvc := service.NewConflictDetectionService(
		teacherRepo, classroomRepo, timeSlotRepo, offeringRepo, studentRepo,
		scheduleRepo, conflictRepo, cacheRepo, notifications,
		validate, logr, metrics,
		service.DetectionServiceConfig{
			DedupWindow: cfg.Detection.DedupWindow,
			WindowStart: cfg.Detection.WindowStart,
			WindowEnd:   cfg.Detection.WindowEnd,
		},
	)

	conflictSvc := service.NewConflictService(conflictRepo, cacheRepo, validate, logr, metrics,
		service.ConflictServiceConfig{
			OverdueAfter:  cfg.Detection.OverdueAfter,
			StatsCacheTTL: cfg.Detection.StatsCacheTTL,
		},
	)

	solverHandler := handler.NewSolverHandler(solverSvc)
	conflictHandler := handler.NewConflictHandler(detectionSvc, conflictSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

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

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.POST("/scheduling/solve", solverHandler.Solve)

		conflicts := api.Group("/conflicts")
		{
			conflicts.POST("/detect", conflictHandler.Detect)
			conflicts.GET("", conflictHandler.List)
			conflicts.GET("/pending", conflictHandler.Pending)
			conflicts.GET("/has-pending", conflictHandler.HasPending)
			conflicts.GET("/stats", conflictHandler.Stats)
			conflicts.GET("/export", conflictHandler.Export)
			conflicts.GET("/:id", conflictHandler.Get)
			conflicts.POST("/:id/resolve", conflictHandler.Resolve)
			conflicts.POST("/:id/ignore", conflictHandler.Ignore)
			conflicts.POST("/:id/defer", conflictHandler.Defer)
			conflicts.POST("/:id/reopen", conflictHandler.Reopen)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifications.Start(ctx)
	defer notifications.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
