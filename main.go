package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trendscope-backend/activity"
	"trendscope-backend/cache"
	"trendscope-backend/config"
	"trendscope-backend/database"
	"trendscope-backend/firebase"
	"trendscope-backend/logger"
	"trendscope-backend/middleware"
	"trendscope-backend/routes"
	"trendscope-backend/services"
	"trendscope-backend/spreadsheet"
	"trendscope-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		logrus.Fatal("Error loading .env file: ", err)
	}

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		logrus.Fatal("Environment validation failed: ", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	// Create default admin user if not exists
	if err := database.CreateDefaultAdmin(db); err != nil {
		logrus.WithError(err).Warn("Could not create default admin")
	}

	deps := routes.Deps{
		DB:          db,
		Images:      utils.NewImageChecker(cfg.ImageCheckAttempts, cfg.ImageCheckInterval),
		Sheets:      spreadsheet.NewClient(spreadsheet.NewGormTokenStore(db), cfg.SheetRange),
		BulkTimeout: cfg.BulkTxTimeout,
	}

	// Firebase is optional; without it uploads answer 503
	storage, err := firebase.Init(context.Background(), os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), cfg.FirebaseBucket)
	if err != nil {
		logrus.WithError(err).Warn("Firebase storage disabled")
	} else {
		deps.Storage = storage
	}

	// Redis backs the category cache and the shared maintenance lock
	if cfg.RedisURL != "" {
		client, err := cache.Connect(cfg.RedisURL)
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, falling back to process-local cache and lock")
		} else {
			defer client.Close()
			deps.Cache = cache.NewTreeCache(client, cfg.CategoryCacheTTL)
			deps.Locker = cache.NewRedisLocker(client, cfg.BulkTxTimeout+30*time.Second)
		}
	}
	if deps.Locker == nil {
		deps.Locker = &services.LocalLocker{}
	}

	recorder := activity.NewRecorder(&activity.GormSink{DB: db}, activity.Options{
		BatchSize:     cfg.ActivityBatchSize,
		FlushInterval: cfg.ActivityFlushInterval,
		QueueSize:     cfg.ActivityQueueSize,
	})
	deps.Activity = recorder

	utils.RegisterValidators()

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	// CORS configuration - filter out empty strings from AllowOrigins
	var origins []string
	for _, o := range []string{cfg.FrontendURL, cfg.AdminURL} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
		logrus.Warn("No CORS origins configured, defaulting to http://localhost:3000")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	// Pending activity must land before the database goes away
	if err := recorder.Close(ctx); err != nil {
		logrus.WithError(err).Warn("Activity recorder did not drain in time")
	}

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.WithError(err).Error("Error closing database connection")
		} else {
			logrus.Info("Database connection closed")
		}
	}

	logrus.Info("Server exited gracefully")
}
