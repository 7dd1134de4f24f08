package routes

import (
	"time"

	"trendscope-backend/activity"
	"trendscope-backend/cache"
	"trendscope-backend/firebase"
	"trendscope-backend/handlers"
	"trendscope-backend/middleware"
	"trendscope-backend/services"
	"trendscope-backend/spreadsheet"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from. Only DB is
// required; the rest degrade to disabled features when nil.
type Deps struct {
	DB          *gorm.DB
	Storage     firebase.StorageClient
	Images      services.ImageVerifier
	Sheets      services.SheetFetcher
	Locker      services.Locker
	Cache       *cache.TreeCache
	Activity    *activity.Recorder
	BulkTimeout time.Duration
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	db := deps.DB

	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db, Tokens: spreadsheet.NewGormTokenStore(db), Activity: deps.Activity}
	categoryHandler := &handlers.CategoryHandler{
		Service:  services.NewCategoryService(db),
		Cache:    deps.Cache,
		Activity: deps.Activity,
	}
	trendHandler := &handlers.TrendHandler{
		Service:  &services.TrendService{DB: db, Images: deps.Images, Sheets: deps.Sheets},
		Storage:  deps.Storage,
		Activity: deps.Activity,
	}
	colorHandler := &handlers.ColorHandler{
		Service:  &services.ColorService{DB: db, Sheets: deps.Sheets},
		Storage:  deps.Storage,
		Activity: deps.Activity,
	}
	bulkHandler := &handlers.BulkHandler{
		Service:  services.NewBulkService(db, deps.BulkTimeout, deps.Locker),
		Cache:    deps.Cache,
		Activity: deps.Activity,
	}
	uploadHandler := &handlers.UploadHandler{Storage: deps.Storage, Activity: deps.Activity}
	activityHandler := &handlers.ActivityHandler{DB: db}

	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	bulkLimiter := middleware.NewRateLimiter(5, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		api.POST("/auth/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)

		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:slug", categoryHandler.GetCategory)

		api.GET("/trends", trendHandler.GetTrends)
		api.GET("/trends/:id", trendHandler.GetTrend)

		api.GET("/colors", colorHandler.GetColors)
		api.GET("/colors/:id", colorHandler.GetColor)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
	}

	// Analytics require an active subscription
	subscribed := api.Group("")
	subscribed.Use(middleware.AuthMiddleware(), middleware.SubscriptionMiddleware(db))
	{
		subscribed.GET("/trends/:id/analytics", trendHandler.GetTrendAnalytics)
		subscribed.GET("/colors/:id/analytics", colorHandler.GetColorAnalytics)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories", categoryHandler.UpdateCategory)
		admin.DELETE("/categories", categoryHandler.DeleteCategory)

		admin.POST("/trends", trendHandler.CreateTrend)
		admin.PUT("/trends/:id", trendHandler.UpdateTrend)
		admin.DELETE("/trends/:id", trendHandler.DeleteTrend)

		admin.POST("/colors", colorHandler.CreateColor)
		admin.PUT("/colors/:id", colorHandler.UpdateColor)
		admin.DELETE("/colors/:id", colorHandler.DeleteColor)
		admin.POST("/colors/:id/spreadsheet", colorHandler.ImportColorSpreadsheet)

		admin.POST("/bulk-cleanup", bulkLimiter.Middleware(), bulkHandler.Cleanup)
		admin.GET("/bulk-export", bulkLimiter.Middleware(), bulkHandler.Export)
		admin.POST("/bulk-import", bulkLimiter.Middleware(), bulkHandler.Import)

		admin.POST("/upload", uploadHandler.UploadImage)
		admin.POST("/upload/remote", uploadHandler.RehostImage)

		admin.GET("/users", authHandler.ListUsers)
		admin.PUT("/users/:id/subscription", authHandler.UpdateSubscription)
		admin.PUT("/google/token", authHandler.SaveGoogleToken)

		admin.GET("/activity", activityHandler.GetActivity)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
