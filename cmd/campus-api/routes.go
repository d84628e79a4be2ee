package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/college-approvals-api/internal/handler"
	"github.com/noah-isme/college-approvals-api/internal/middleware"
	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/service"
	"github.com/noah-isme/college-approvals-api/pkg/config"
	"github.com/noah-isme/college-approvals-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/college-approvals-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/college-approvals-api/pkg/middleware/requestid"
)

type routeDeps struct {
	tokens    *service.TokenService
	actors    *service.ActorService
	bookings  *service.BookingService
	leaves    *service.LeaveService
	reports   *service.ReportService
	directory *service.DirectoryService
	metrics   *service.MetricsService
	db        *sqlx.DB
	redis     *redis.Client
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Assign())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.RouteMetrics(deps.metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.ClientMeta())

	checks := map[string]handler.Pinger{"postgres": deps.db}
	if deps.redis != nil {
		client := deps.redis
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	metricsHandler := handler.NewMetricsHandler(deps.metrics, checks, logr)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Docs.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	bookingHandler := handler.NewBookingHandler(deps.bookings)
	leaveHandler := handler.NewLeaveHandler(deps.leaves)
	reportHandler := handler.NewReportHandler(deps.reports)
	directoryHandler := handler.NewDirectoryHandler(deps.directory)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.tokens), middleware.Actor(deps.actors))

	api.GET("/me", directoryHandler.Me)
	api.GET("/rooms", directoryHandler.ListRooms)

	admin := api.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/rooms", directoryHandler.CreateRoom)
	admin.PUT("/rooms/:id", directoryHandler.UpdateRoom)
	admin.DELETE("/rooms/:id", directoryHandler.DeleteRoom)
	admin.POST("/divisions", directoryHandler.EnsureDivision)

	bookings := api.Group("/bookings")
	bookings.POST("", middleware.RequireRoles(models.RoleStudent, models.RoleTeacher), bookingHandler.Create)
	bookings.GET("/mine", bookingHandler.Mine)
	bookings.GET("/pending", middleware.RequireRoles(models.RoleTeacher), bookingHandler.Pending)
	bookings.POST("/:id/decision", middleware.RequireRoles(models.RoleTeacher), bookingHandler.Decide)

	leaves := api.Group("/leaves")
	leaves.POST("", middleware.RequireRoles(models.RoleStudent), leaveHandler.Apply)
	leaves.GET("/mine", middleware.RequireRoles(models.RoleStudent), leaveHandler.Mine)
	leaves.GET("/pending", middleware.RequireRoles(models.RoleTeacher), leaveHandler.Pending)
	leaves.POST("/:id/decision", middleware.RequireRoles(models.RoleTeacher), leaveHandler.Decide)

	reports := api.Group("/reports")
	reports.GET("/bookings", reportHandler.BookingLog)
	reports.GET("/leaves", reportHandler.LeaveLog)

	return r
}
