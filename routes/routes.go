package routes

import (
	"time"

	"catalog-backend/cache"
	"catalog-backend/catalog"
	"catalog-backend/firebase"
	"catalog-backend/handlers"
	"catalog-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, storage firebase.StorageClient, drafts *catalog.DraftStore, listCache *cache.ListCache) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	categoryHandler := &handlers.CategoryHandler{DB: db, Cache: listCache}
	productHandler := &handlers.ProductHandler{DB: db, Storage: storage, Cache: listCache}
	draftHandler := &handlers.DraftHandler{DB: db, Drafts: drafts, Storage: storage, Cache: listCache}
	orderHandler := &handlers.OrderHandler{DB: db}

	// Brute-force protection on login; uploads are capped separately since a
	// single batch fans out to the blob store.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	uploadLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		api.POST("/auth/login", loginLimiter.Middleware(), authHandler.Login)

		// Public catalog routes
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:id", categoryHandler.GetCategory)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
	}

	// Staff routes (admin or editor)
	staff := api.Group("/staff")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	{
		staff.GET("/products", productHandler.GetProductsPaginated)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Product management
		admin.GET("/products", productHandler.GetProductsPaginated)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)

		// Draft lifecycle: create, edit, upload, arrange, submit
		admin.POST("/products/drafts", draftHandler.CreateDraft)
		admin.GET("/products/drafts/:id", draftHandler.GetDraft)
		admin.PUT("/products/drafts/:id", draftHandler.UpdateDraft)
		admin.POST("/products/drafts/:id/images", uploadLimiter.Middleware(), draftHandler.UploadImages)
		admin.PUT("/products/drafts/:id/images/order", draftHandler.ReorderImages)
		admin.DELETE("/products/drafts/:id/images/:index", draftHandler.DeleteImage)
		admin.POST("/products/drafts/:id/submit", draftHandler.SubmitDraft)

		// Category management
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		// Order views
		admin.GET("/orders", orderHandler.GetOrders)
		admin.GET("/orders/:id", orderHandler.GetOrder)
		admin.GET("/dashboard", orderHandler.GetAdminDashboard)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
