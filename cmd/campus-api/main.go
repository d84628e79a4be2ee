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
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/college-approvals-api/api/swagger"
	"github.com/noah-isme/college-approvals-api/internal/repository"
	"github.com/noah-isme/college-approvals-api/internal/service"
	"github.com/noah-isme/college-approvals-api/pkg/cache"
	"github.com/noah-isme/college-approvals-api/pkg/config"
	"github.com/noah-isme/college-approvals-api/pkg/database"
	"github.com/noah-isme/college-approvals-api/pkg/jobs"
	"github.com/noah-isme/college-approvals-api/pkg/logger"
)

// @title College Approvals API
// @version 1.0.0
// @description Room booking and student leave approval workflows.
// @BasePath /api/v1
// @schemes http https
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(cfg.Database); err != nil {
			logr.Fatal("migrations failed", zap.Error(err))
		}
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Reports.CacheEnabled {
		redisClient, err = cache.OpenReportCache(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, reports run uncached", zap.Error(err))
			cfg.Reports.CacheEnabled = false
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}
	opts := []service.Option{service.WithMetrics(metrics)}
	validate := validator.New()

	users := repository.NewUserRepository(db)
	teachers := repository.NewTeacherRepository(db)
	students := repository.NewStudentRepository(db)
	divisions := repository.NewDivisionRepository(db)
	rooms := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)

	reports := service.NewReportService(bookingRepo, leaveRepo, repository.NewReportCacheRepository(redisClient), service.ReportCacheConfig{
		Enabled: cfg.Reports.CacheEnabled,
		TTL:     cfg.Reports.CacheTTL,
	}, logr, opts...)

	// Approvals invalidate a cached log synchronously; the rebuild runs on a
	// single worker so rebuilds never overtake each other.
	var warmer *service.ReportWarmer
	if cfg.Reports.CacheEnabled {
		warmQueue := jobs.NewQueue("report-warm", func(ctx context.Context, job jobs.Job) error {
			return warmer.Handle(ctx, job)
		}, jobs.QueueConfig{
			Workers:    1,
			MaxRetries: cfg.Reports.WarmRetries,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
		})
		warmer = service.NewReportWarmer(reports, warmQueue, logr)
		warmQueue.Start(ctx)
		defer warmQueue.Stop()
	} else {
		warmer = service.NewReportWarmer(reports, nil, logr)
	}

	deps := routeDeps{
		tokens:    service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}),
		actors:    service.NewActorService(users, teachers, students, divisions, logr),
		bookings:  service.NewBookingService(bookingRepo, rooms, divisions, users, warmer, validate, logr, opts...),
		leaves:    service.NewLeaveService(leaveRepo, divisions, users, warmer, validate, logr, opts...),
		reports:   reports,
		directory: service.NewDirectoryService(rooms, divisions, users, warmer, validate, logr),
		metrics:   metrics,
		db:        db,
		redis:     redisClient,
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
