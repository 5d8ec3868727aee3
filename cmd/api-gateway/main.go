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

	_ "github.com/noah-isme/course-reg-api/api/swagger"
	"github.com/noah-isme/course-reg-api/internal/handler"
	"github.com/noah-isme/course-reg-api/internal/middleware"
	"github.com/noah-isme/course-reg-api/internal/repository"
	"github.com/noah-isme/course-reg-api/internal/service"
	"github.com/noah-isme/course-reg-api/pkg/cache"
	"github.com/noah-isme/course-reg-api/pkg/config"
	"github.com/noah-isme/course-reg-api/pkg/database"
	"github.com/noah-isme/course-reg-api/pkg/jobs"
	"github.com/noah-isme/course-reg-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-reg-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-reg-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-reg-api/pkg/storage"
)

// @title Course Registration API
// @version 0.1.0
// @description Enrollment decision engine with section search and course tables
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, course table cache disabled", "error", err)
		redisClient = nil
	}

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	majorRepo := repository.NewMajorRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)

	metricsSvc := service.NewMetricsService()
	seats := service.NewSeatController(enrollmentRepo)
	var tableSvc *service.CourseTableService
	if redisClient != nil {
		tableCache := repository.NewCacheRepository(redisClient, logr)
		tableSvc = service.NewCourseTableService(enrollmentRepo, semesterRepo, instructorRepo, tableCache, cfg.Enrollment.CourseTableCacheTTL, logr)
	} else {
		tableSvc = service.NewCourseTableService(enrollmentRepo, semesterRepo, instructorRepo, nil, cfg.Enrollment.CourseTableCacheTTL, logr)
	}
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, sectionRepo, courseRepo, seats, tableSvc, metricsSvc, nil, logr, cfg.Enrollment.PassCutoff)
	studentSvc := service.NewStudentService(studentRepo, majorRepo, courseRepo, enrollmentRepo, nil, logr, cfg.Enrollment.PassCutoff)
	searchSvc := service.NewSearchService(sectionRepo, instructorRepo, studentRepo, enrollmentRepo, logr, cfg.Enrollment.PassCutoff)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(tableSvc, exportStore, signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
			jobs.QueueConfig{Workers: cfg.Exports.WorkerConcurrency, MaxRetries: cfg.Exports.WorkerRetries},
			logr)
		exportSvc.Start(context.Background())
		defer exportSvc.Stop()

		go func() {
			interval := cfg.Exports.CleanupInterval
			if interval <= 0 {
				interval = time.Hour
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				exportSvc.CleanupExpired()
			}
		}()
	}

	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, enrollmentSvc)
	searchHandler := handler.NewSearchHandler(searchSvc)
	tableHandler := handler.NewCourseTableHandler(tableSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
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
	api.Use(middleware.JWT(cfg.JWT.Secret))

	students := api.Group("/students")
	students.POST("", middleware.RBAC(middleware.RoleAdmin), studentHandler.Create)
	students.GET("/:id/major", middleware.RBAC(middleware.RoleAdmin, "SELF"), studentHandler.Major)
	students.GET("/:id/prerequisites/:courseId", middleware.RBAC(middleware.RoleAdmin, "SELF"), studentHandler.PassedPrerequisites)
	students.GET("/:id/grades", middleware.RBAC(middleware.RoleAdmin, "SELF"), studentHandler.Grades)
	students.GET("/:id/course-table", middleware.RBAC(middleware.RoleAdmin, "SELF"), tableHandler.Get)
	students.POST("/:id/course-table/exports", middleware.RBAC(middleware.RoleAdmin, "SELF"), tableHandler.RequestExport)

	enrollments := api.Group("/enrollments")
	enrollments.POST("", middleware.RBAC(middleware.RoleAdmin, middleware.RoleStudent), enrollmentHandler.Enroll)
	enrollments.POST("/drop", middleware.RBAC(middleware.RoleAdmin, middleware.RoleStudent), enrollmentHandler.Drop)
	enrollments.POST("/force-add", middleware.RBAC(middleware.RoleAdmin), enrollmentHandler.ForceAdd)
	enrollments.PUT("/grade", middleware.RBAC(middleware.RoleAdmin), enrollmentHandler.SetGrade)

	api.POST("/semesters/:id/sections/search", middleware.RBAC(middleware.RoleAdmin, middleware.RoleStudent), searchHandler.Search)

	exports := api.Group("/exports")
	exports.GET("/:jobId", middleware.RBAC(middleware.RoleAdmin, middleware.RoleStudent), tableHandler.ExportStatus)
	exports.GET("/download/:token", middleware.RBAC(middleware.RoleAdmin, middleware.RoleStudent), tableHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
