package routes

import (
	"Risker/controllers"
	"Risker/services/game"
	"Risker/services/postgres"
	"Risker/services/redis"
	"Risker/services/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, registry *game.State, redisClient *redis.RedisClient) {
	store := postgres.NewStore(db)

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	// Read-only lobby views straight off the durable store
	api.GET("/lobbies", controllers.GetAllLobbies(db))
	api.GET("/lobbies/:lobby_id", controllers.GetLobbyInfo(db))

	// The websocket endpoint carries every mutating lobby operation
	wsServer := ws.NewServer(store, registry, redisClient)
	wsServer.Start(router)
}
