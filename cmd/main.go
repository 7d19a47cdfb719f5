package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tesseract-hub/onboarding-service/internal/cache"
	"github.com/tesseract-hub/onboarding-service/internal/config"
	"github.com/tesseract-hub/onboarding-service/internal/handlers"
	"github.com/tesseract-hub/onboarding-service/internal/middleware"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	natsclient "github.com/tesseract-hub/onboarding-service/internal/nats"
	"github.com/tesseract-hub/onboarding-service/internal/notifications"
	"github.com/tesseract-hub/onboarding-service/internal/repository"
	"github.com/tesseract-hub/onboarding-service/internal/scheduler"
	"github.com/tesseract-hub/onboarding-service/internal/services"
	"github.com/tesseract-hub/onboarding-service/internal/storage"
	"github.com/tesseract-hub/onboarding-service/internal/templates"
	"github.com/tesseract-hub/onboarding-service/internal/verification"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting Onboarding Service")

	db, err := connectDatabase(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	if err := repository.AutoMigrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}
	logger.Info("Database migrations completed")
	store := repository.NewStore(db)

	files, err := storage.New(cfg.StorageSettings(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create storage provider")
	}
	logger.WithField("provider", files.Name()).Info("File storage initialized")

	statusCache := connectCache(cfg, logger)
	defer statusCache.Close()

	verifier := createVerifier(cfg, logger)

	renderer, err := templates.NewRenderer()
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse notification templates")
	}
	email, sms := createProviders(cfg, logger)
	direct := notifications.NewDirectGateway(renderer, email, sms, logger)

	// Without NATS notifications go out inline and no events are published.
	var gateway notifications.Gateway = direct
	var events services.StatusEventPublisher
	var consumer *notifications.Consumer
	var natsClient *natsclient.Client
	if cfg.NATS.URL != "" {
		natsClient, err = natsclient.NewClient(natsclient.Config{URL: cfg.NATS.URL}, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to NATS, events disabled and notifications sent inline")
		} else {
			defer natsClient.Close()
			gateway, events, consumer = setupMessaging(cfg, natsClient, direct, logger)
		}
	} else {
		logger.Info("NATS not configured, events disabled and notifications sent inline")
	}

	notifier := services.NewProfileNotifier(gateway, store.Users, cfg.Notifications.AdminRecipients, cfg.Server.AdminURL, logger)
	mobileService := services.NewMobileService(store, gateway, statusCache, services.MobileConfig{
		CodeTTL:         cfg.CodeTTL(),
		MaxSendsPerHour: cfg.Mobile.MaxSendsPerHour,
	}, logger)
	profileService := services.NewProfileService(store, files, verifier, notifier, mobileService, events, statusCache, logger)
	profileService.SetStatusTTL(cfg.StatusTTL())
	adminService := services.NewAdminService(store, notifier, events, statusCache, logger)
	adminService.SetStatusTTL(cfg.StatusTTL())
	userService := services.NewUserService(store, statusCache, logger)

	var sweeper *scheduler.CodeSweeper
	if cfg.Mobile.SweepSchedule != "" {
		sweeper = scheduler.NewCodeSweeper(store.Steps, cfg.CodeTTL(), cfg.Mobile.SweepSchedule, logger)
		if err := sweeper.Start(); err != nil {
			logger.WithError(err).Warn("Mobile code sweeper disabled")
			sweeper = nil
		}
	}

	checks := map[string]handlers.HealthCheck{
		"database": store.Ping,
		"cache":    statusCache.Ping,
	}
	if natsClient != nil {
		checks["nats"] = func(context.Context) error {
			if !natsClient.IsConnected() {
				return fmt.Errorf("not connected")
			}
			return nil
		}
	}

	routes := &handlers.Routes{
		Profiles: handlers.NewProfileHandler(profileService, logger),
		Mobile:   handlers.NewMobileHandler(mobileService, logger),
		Admin:    handlers.NewAdminHandler(adminService, userService, logger),
		Verified: profileService,
	}
	router := setupRouter(cfg, routes, handlers.NewHealthHandler(checks, logger), userService, logger)

	server := &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.GetAddr()).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if sweeper != nil {
		sweeper.Stop()
	}
	if consumer != nil {
		consumer.Stop()
	}

	logger.Info("Server exited")
}

// setupLogger configures the application logger
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetOutput(os.Stdout)
	return logger
}

// connectDatabase opens the postgres connection and sizes its pool
func connectDatabase(cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if cfg.Server.Mode == gin.DebugMode {
		logLevel = gormlogger.Warn
	}
	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.MaxLifetime) * time.Second)

	logger.WithFields(logrus.Fields{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	}).Info("Connected to database")
	return db, nil
}

// connectCache falls back to a no-op cache, which also disables code throttling
func connectCache(cfg *config.Config, logger *logrus.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		logger.Info("Cache disabled by configuration")
		return cache.NewNoOpCache()
	}
	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host:     cfg.Cache.Host,
		Port:     cfg.Cache.Port,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		PoolSize: cfg.Cache.PoolSize,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis, continuing without cache")
		return cache.NewNoOpCache()
	}
	return redisCache
}

func createVerifier(cfg *config.Config, logger *logrus.Logger) verification.Verifier {
	if cfg.Verification.Provider == "http" {
		logger.WithField("endpoint", cfg.Verification.Endpoint).Info("Using HTTP document verifier")
		httpVerifier := verification.NewHTTPVerifier(cfg.Verification.Endpoint, cfg.Verification.APIKey, cfg.VerificationTimeout(), logger)
		return verification.NewBreakerVerifier(httpVerifier, verification.BreakerSettings{
			ConsecutiveFailures: cfg.Verification.BreakerFailures,
			OpenTimeout:         time.Duration(cfg.Verification.BreakerOpenSeconds) * time.Second,
		}, logger)
	}
	logger.Warn("Using mock document verifier")
	return verification.NewMockVerifier()
}

// createProviders builds the email and SMS providers. AWS configuration is
// loaded once and shared by SES and SNS.
func createProviders(cfg *config.Config, logger *logrus.Logger) (notifications.Provider, notifications.Provider) {
	n := cfg.Notifications
	var email notifications.Provider = notifications.NewLogProvider(notifications.ChannelEmail, logger)
	var sms notifications.Provider = notifications.NewLogProvider(notifications.ChannelSMS, logger)
	if n.EmailProvider != "ses" && n.SMSProvider != "sns" {
		return email, sms
	}

	aws := cfg.Storage.AWS
	awsCfg, err := storage.LoadAWSConfig(context.Background(), aws.Region, aws.AccessKeyID, aws.SecretAccessKey)
	if err != nil {
		logger.WithError(err).Warn("Failed to load AWS configuration, notifications will only be logged")
		return email, sms
	}
	if n.EmailProvider == "ses" {
		email = notifications.NewSESProviderFromConfig(awsCfg, n.FromEmail, n.FromName)
	}
	if n.SMSProvider == "sns" {
		sms = notifications.NewSNSProviderFromConfig(awsCfg, n.SMSSenderID)
	}
	logger.WithFields(logrus.Fields{
		"email": email.GetName(),
		"sms":   sms.GetName(),
	}).Info("Notification providers initialized")
	return email, sms
}

// setupMessaging creates the streams, the event publisher and, when async
// delivery is on, the notification queue with its consumer.
func setupMessaging(cfg *config.Config, client *natsclient.Client, direct *notifications.DirectGateway, logger *logrus.Logger) (notifications.Gateway, services.StatusEventPublisher, *notifications.Consumer) {
	var gateway notifications.Gateway = direct
	var events services.StatusEventPublisher

	if err := client.EnsureStream(cfg.NATS.EventsStream, "onboarding.profile.>", "Onboarding profile events"); err != nil {
		logger.WithError(err).Warn("Failed to ensure events stream, events disabled")
	} else {
		events = natsclient.NewEventPublisher(client.JetStream(), logger)
	}

	if !cfg.Notifications.Async {
		return gateway, events, nil
	}
	if err := client.EnsureStream(cfg.NATS.NotificationsStream, notifications.SubjectWildcard, "Onboarding notifications"); err != nil {
		logger.WithError(err).Warn("Failed to ensure notifications stream, sending inline")
		return gateway, events, nil
	}
	consumer := notifications.NewConsumer(client.JetStream(), cfg.NATS.NotificationsStream, direct, logger)
	if err := consumer.Start(); err != nil {
		logger.WithError(err).Warn("Failed to start notification consumer, sending inline")
		return gateway, events, nil
	}
	return notifications.NewQueueGateway(client.JetStream(), logger), events, consumer
}

func setupRouter(cfg *config.Config, routes *handlers.Routes, health *handlers.HealthHandler, users middleware.UserSyncer, logger *logrus.Logger) *gin.Engine {
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Storage.Provider == storage.ProviderLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	api := router.Group("/api/v1", middleware.JWTAuth(cfg.Auth.JWTSecret, cfg.Auth.StaffRoles, users, logger))
	routes.Register(api, logger)

	logger.WithField("variants", []models.Variant{models.VariantHost, models.VariantVendor}).Info("Routes registered")
	return router
}
