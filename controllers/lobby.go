package controllers

import (
	models "Risker/models/postgres"
	"Risker/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Read-only lobby endpoints over the durable store. All mutation goes
// through the websocket protocol; these exist for dashboards and polling
// clients that only need the restart-surviving view.

// @Summary Gives info of a lobby
// @Description Given a lobby id, it will return its information
// @Tags lobby
// @Produce json
// @Param lobby_id path string true "Id of the lobby wanted"
// @Success 200 {object} object{lobby_id=string,name=string,max_commanders=integer,max_pawns=integer,status=string,created_at=string,player_count=integer}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /lobbies/{lobby_id} [get]
func GetLobbyInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lobbyID := c.Param("lobby_id")

		var lobby models.Lobby
		result := db.Where("id = ?", lobbyID).First(&lobby)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
			}
			return
		}

		playerCount, err := utils.CountLobbyPlayers(db, lobbyID)
		if err != nil {
			log.Printf("Error counting players of lobby %s: %v", lobbyID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading lobby members"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"lobby_id":       lobby.ID,
			"name":           lobby.Name,
			"max_commanders": lobby.MaxCommanders,
			"max_pawns":      lobby.MaxPawns,
			"status":         lobby.Status,
			"created_at":     lobby.CreatedAt,
			"player_count":   playerCount,
		})
	}
}

// @Summary Lists all existing lobbies
// @Description Returns a list of all the lobbies
// @Tags lobby
// @Produce json
// @Success 200 {array} object{lobby_id=string,name=string,max_commanders=integer,max_pawns=integer,status=string,created_at=string}
// @Failure 500 {object} object{error=string}
// @Router /lobbies [get]
func GetAllLobbies(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var gameLobbies []models.Lobby
		if err := db.Find(&gameLobbies).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing lobbies"})
			return
		}

		lobbies := make([]gin.H, len(gameLobbies))
		for i, lobby := range gameLobbies {
			lobbies[i] = gin.H{
				"lobby_id":       lobby.ID,
				"name":           lobby.Name,
				"max_commanders": lobby.MaxCommanders,
				"max_pawns":      lobby.MaxPawns,
				"status":         lobby.Status,
				"created_at":     lobby.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, lobbies)
	}
}
