package routes

import (
	"finance-tracker-api/internal/cache"
	"finance-tracker-api/internal/handlers"
	"finance-tracker-api/internal/logger"
	"finance-tracker-api/internal/middleware"
	"finance-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the router over the given cache store.
func SetupRoutes(store cache.Store) *gin.Engine {
	// Mutating handlers evict through the same store the read middleware fills.
	inv := cache.NewInvalidator(store)

	ginRouter := gin.New()
	ginRouter.Use(middleware.RequestLogger(logger.GetLogger()))
	ginRouter.Use(gin.Recovery())

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Finance Tracker API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		protectedRoutes.GET("/me", middleware.CachePage(store, cache.TTLUser), handlers.GetCurrentUser)

		// Retrieval endpoints go through the read-through cache; the TTL
		// reflects how often each resource class changes.
		protectedRoutes.GET("/transactions", middleware.CachePage(store, cache.TTLTransactionList), handlers.GetTransactions)
		protectedRoutes.GET("/transactions/:id", middleware.CachePage(store, cache.TTLTransaction), handlers.GetTransactionByID)
		protectedRoutes.GET("/categories", middleware.CachePage(store, cache.TTLCategories), handlers.GetCategories)

		analytics := protectedRoutes.Group("/analytics")
		analytics.Use(middleware.CachePage(store, cache.TTLAnalytics))
		{
			analytics.GET("/monthly", handlers.GetMonthlyAnalytics)
			analytics.GET("/yearly", handlers.GetYearlyAnalytics)
			analytics.GET("/categories", handlers.GetCategoryAnalytics)
			analytics.GET("/trends", handlers.GetTrendAnalytics)
			analytics.GET("/dashboard", handlers.GetDashboard)
		}

		// Realtime transaction event feed
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)

		// Mutations are never cached and are closed to read-only accounts
		writerRoutes := protectedRoutes.Group("")
		writerRoutes.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleUser))
		{
			writerRoutes.POST("/transactions", handlers.CreateTransaction(inv))
			writerRoutes.PUT("/transactions/:id", handlers.UpdateTransaction(inv))
			writerRoutes.DELETE("/transactions/:id", handlers.DeleteTransaction(inv))
		}

		// Admin-only management endpoints
		adminRoutes := protectedRoutes.Group("")
		adminRoutes.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			adminRoutes.GET("/users", middleware.CachePage(store, cache.TTLUserList), handlers.GetAllUsers)
			adminRoutes.PATCH("/admin/users/:id/role", handlers.UpdateUserRole(inv))

			// On-behalf transaction management backing the admin form
			adminRoutes.POST("/admin/transactions", handlers.AdminCreateTransaction(inv))
			adminRoutes.PUT("/admin/transactions/:id", handlers.AdminUpdateTransaction(inv))

			adminRoutes.POST("/categories", handlers.CreateCategory(inv))
			adminRoutes.PUT("/categories/:id", handlers.UpdateCategory(inv))
			adminRoutes.DELETE("/categories/:id", handlers.DeleteCategory(inv))
		}
	}

	return ginRouter
}
