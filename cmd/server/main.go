package main

import (
	"os"

	"finance-tracker-api/internal/cache"
	"finance-tracker-api/internal/database"
	"finance-tracker-api/internal/logger"
	"finance-tracker-api/internal/routes"
)

func main() {
	log := logger.GetLogger()

	// Init database
	database.InitDB()

	// Init cache store (redis when configured, in-process otherwise)
	store := cache.NewStore(os.Getenv("REDIS_URL"))
	defer store.Close()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8008"
	}
	log.Infof("Server starting on port :%s", port)

	if err := ginRoutes.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
