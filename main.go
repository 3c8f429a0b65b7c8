package main

import (
	"Risker/config"
	_ "Risker/config/swagger"
	"Risker/middleware"
	"Risker/routes"
	"Risker/services/game"
	"Risker/services/postgres"
	"Risker/services/redis"
	syncpkg "Risker/sync"
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Risker API
// @version 1.0
// @description Lobby coordination server for the "Risker" game
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	// Redis only carries chat history and lobby snapshots; the server can
	// run without it
	redisClient, err := config.ConnectRedis()
	if err != nil {
		log.Printf("Warning: Redis unavailable, chat history disabled: %v", err)
		redisClient = nil
	} else {
		defer redis.CloseRedis(redisClient)
	}

	// Rebuild the in-memory registry from the mirror before accepting
	// connections; a failure here means the state cannot be trusted
	registry := game.NewState()
	store := postgres.NewStore(gormDB)
	syncManager := syncpkg.NewSyncManager(store, registry)
	if err := syncManager.Reconcile(context.Background()); err != nil {
		log.Fatalf("Error reconciling registry from PostgreSQL: %v", err)
	}

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, gormDB, registry, redisClient)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
