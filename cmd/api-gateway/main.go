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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kairos-hr/attendance-admin-api/api/swagger"
	"github.com/kairos-hr/attendance-admin-api/internal/handler"
	"github.com/kairos-hr/attendance-admin-api/internal/middleware"
	"github.com/kairos-hr/attendance-admin-api/internal/models"
	"github.com/kairos-hr/attendance-admin-api/internal/repository"
	"github.com/kairos-hr/attendance-admin-api/internal/service"
	"github.com/kairos-hr/attendance-admin-api/pkg/cache"
	"github.com/kairos-hr/attendance-admin-api/pkg/config"
	"github.com/kairos-hr/attendance-admin-api/pkg/database"
	"github.com/kairos-hr/attendance-admin-api/pkg/jobs"
	"github.com/kairos-hr/attendance-admin-api/pkg/logger"
	corsmiddleware "github.com/kairos-hr/attendance-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kairos-hr/attendance-admin-api/pkg/middleware/requestid"
	"github.com/kairos-hr/attendance-admin-api/pkg/storage"
)

// @title Attendance Admin API
// @version 1.0.0
// @description Staff attendance, duty roster and leave administration console
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	reportRepo := repository.NewReportRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "attendance-admin-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, employeeRepo, cfg.Attendance.PageSize, validate, logr)
	importSvc := service.NewImportService(attendanceRepo, employeeRepo, logr)
	exportSvc := service.NewExportService(attendanceRepo, employeeRepo, logr)
	rosterSvc := service.NewRosterService(shiftRepo, rosterRepo, employeeRepo, cacheSvc, validate, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, employeeRepo, cacheSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(leaveRepo, employeeRepo, rosterRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	var reportSvc *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		generator := service.NewReportGenerator(exportSvc, rosterRepo, leaveRepo, fileStore, signer, service.GeneratorConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr)
		worker := service.NewReportWorker(reportRepo, generator, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportSvc = service.NewReportService(reportRepo, reportQueue, generator, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})

		reportQueue.Start(ctx)
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, importSvc, exportSvc, cfg.Imports.MaxFileSizeBytes)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	leaveHandler := handler.NewLeaveHandler(leaveSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	authenticated := api.Group("")
	authenticated.Use(middleware.JWT(authSvc))

	authenticated.POST("/auth/logout", authHandler.Logout)
	authenticated.POST("/auth/change-password", authHandler.ChangePassword)
	authenticated.GET("/auth/me", authHandler.Me)

	admin := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	employees := authenticated.Group("/employees")
	employees.GET("", employeeHandler.List)
	employees.GET("/all", employeeHandler.ListAll)
	employees.GET("/:id", employeeHandler.Get)
	employees.GET("/:id/attendance", attendanceHandler.GetByEmployee)
	employees.GET("/:id/leave-usage", leaveHandler.Usage)
	employees.POST("", admin, middleware.Audit(userRepo, "CREATE", "employees"), employeeHandler.Create)
	employees.PUT("/:id", admin, middleware.Audit(userRepo, "UPDATE", "employees"), employeeHandler.Update)
	employees.DELETE("/:id", admin, middleware.Audit(userRepo, "DELETE", "employees"), employeeHandler.Delete)
	employees.PUT("/:id/attendance", admin, middleware.Audit(userRepo, "REPLACE", "attendance"), attendanceHandler.Replace)
	employees.PUT("/:id/attendance/record", admin, middleware.Audit(userRepo, "UPSERT", "attendance"), attendanceHandler.Upsert)

	attendance := authenticated.Group("/attendance")
	attendance.GET("", attendanceHandler.List)
	attendance.GET("/export", attendanceHandler.Export)
	attendance.POST("/import", admin, middleware.Audit(userRepo, "IMPORT", "attendance"), attendanceHandler.Import)
	attendance.DELETE("/:id", admin, middleware.Audit(userRepo, "DELETE", "attendance"), attendanceHandler.Delete)

	shifts := authenticated.Group("/shifts")
	shifts.GET("", rosterHandler.ListShifts)
	shifts.POST("", admin, middleware.Audit(userRepo, "CREATE", "shifts"), rosterHandler.CreateShift)
	shifts.PUT("/:id", admin, middleware.Audit(userRepo, "UPDATE", "shifts"), rosterHandler.UpdateShift)
	shifts.DELETE("/:id", admin, middleware.Audit(userRepo, "DELETE", "shifts"), rosterHandler.DeleteShift)

	shiftTypes := authenticated.Group("/shift-types")
	shiftTypes.GET("", rosterHandler.ListShiftTypes)
	shiftTypes.POST("", admin, middleware.Audit(userRepo, "CREATE", "shift_types"), rosterHandler.CreateShiftType)
	shiftTypes.PUT("/:id", admin, middleware.Audit(userRepo, "UPDATE", "shift_types"), rosterHandler.UpdateShiftType)
	shiftTypes.DELETE("/:id", admin, middleware.Audit(userRepo, "DELETE", "shift_types"), rosterHandler.DeleteShiftType)

	roster := authenticated.Group("/roster")
	roster.GET("", rosterHandler.Grid)
	roster.PUT("", admin, middleware.Audit(userRepo, "SAVE", "roster"), rosterHandler.Save)

	leaves := authenticated.Group("/leave-plans")
	leaves.GET("", leaveHandler.List)
	leaves.POST("", admin, middleware.Audit(userRepo, "CREATE", "leave_plans"), leaveHandler.Create)
	leaves.DELETE("/:id", admin, middleware.Audit(userRepo, "DELETE", "leave_plans"), leaveHandler.Delete)

	dashboard := authenticated.Group("/dashboard")
	dashboard.GET("/summary", dashboardHandler.Summary)
	dashboard.GET("/calendar", dashboardHandler.Calendar)
	dashboard.GET("/roster", dashboardHandler.TodayRoster)

	users := authenticated.Group("/users")
	users.Use(middleware.RequireRoles(models.RoleSuperAdmin))
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		authenticated.POST("/reports", reportHandler.Create)
		authenticated.GET("/reports/:id", reportHandler.Status)
		api.GET("/export/:token", reportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
}
