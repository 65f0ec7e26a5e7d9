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

	_ "github.com/moshaver-app/counseling-api/api/swagger"
	"github.com/moshaver-app/counseling-api/db"
	"github.com/moshaver-app/counseling-api/internal/handler"
	"github.com/moshaver-app/counseling-api/internal/middleware"
	"github.com/moshaver-app/counseling-api/internal/models"
	"github.com/moshaver-app/counseling-api/internal/repository"
	"github.com/moshaver-app/counseling-api/internal/service"
	"github.com/moshaver-app/counseling-api/pkg/cache"
	"github.com/moshaver-app/counseling-api/pkg/config"
	"github.com/moshaver-app/counseling-api/pkg/database"
	"github.com/moshaver-app/counseling-api/pkg/jobs"
	"github.com/moshaver-app/counseling-api/pkg/logger"
	"github.com/moshaver-app/counseling-api/pkg/mailer"
	corsmiddleware "github.com/moshaver-app/counseling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/moshaver-app/counseling-api/pkg/middleware/requestid"
	"github.com/moshaver-app/counseling-api/pkg/push"
)

// @title Counseling API
// @version 1.0.0
// @description Counselor availability, appointment booking, and notifications
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

	pg, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer pg.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pg, db.Migrations()); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
		version, err := database.MigrationVersion(ctx, pg)
		if err == nil {
			logr.Sugar().Infow("migrations applied", "version", version)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	userRepo := repository.NewUserRepository(pg)
	timeSlotRepo := repository.NewTimeSlotRepository(pg)
	appointmentRepo := repository.NewAppointmentRepository(pg)
	notificationRepo := repository.NewNotificationRepository(pg)
	otpRepo := repository.NewOTPRepository(redisClient, cfg.PasswordReset.OTPTTL)

	var mail mailer.Mailer
	if cfg.SMTP.Enabled {
		mail = mailer.NewSMTP(cfg.SMTP)
	} else {
		mail = mailer.NewLog(logr)
	}

	metricsService := service.NewMetricsService()
	publisher := push.NewPublisher(redisClient, cfg.Notifications.ChannelPrefix)

	notificationService := service.NewNotificationService(notificationRepo, publisher, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}, metricsService, logr)
	notificationService.Start(ctx)
	defer notificationService.Stop()

	authService := service.NewAuthService(userRepo, otpRepo, mail, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
		OTPLength:  cfg.PasswordReset.OTPLength,
	})
	timeSlotService := service.NewTimeSlotService(timeSlotRepo, userRepo, validate, logr)
	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo, notificationService, validate, logr)

	authHandler := handler.NewAuthHandler(authService)
	timeSlotHandler := handler.NewTimeSlotHandler(timeSlotService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := pg.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/reset-password", authHandler.RequestPasswordReset)
	auth.POST("/reset-password/confirm", authHandler.ConfirmPasswordReset)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	timeslots := api.Group("/timeslots", middleware.JWT(authService))
	timeslots.POST("", middleware.RequireRoles(models.RoleCounselor), timeSlotHandler.Create)
	timeslots.GET("/my", middleware.RequireRoles(models.RoleCounselor), timeSlotHandler.ListMine)
	timeslots.GET("/range/:id", timeSlotHandler.Get)
	timeslots.DELETE("/range/:id", middleware.RequireRoles(models.RoleCounselor, models.RoleAdmin), timeSlotHandler.Delete)

	appointments := api.Group("/appointments", middleware.JWT(authService))
	appointments.POST("/book", middleware.RequireRoles(models.RoleStudent), appointmentHandler.Book)
	appointments.POST("/:id/approve", middleware.RequireRoles(models.RoleCounselor), appointmentHandler.Approve)
	appointments.DELETE("/:id/cancel", appointmentHandler.Cancel)
	appointments.GET("/pending", middleware.RequireRoles(models.RoleCounselor), appointmentHandler.ListPending)
	appointments.GET("/approved", middleware.RequireRoles(models.RoleCounselor), appointmentHandler.ListApproved)

	notifications := api.Group("/notifications", middleware.JWT(authService))
	notifications.GET("", notificationHandler.List)
	notifications.PATCH("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
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
