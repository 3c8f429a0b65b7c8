package utils

import (
	"fmt"

	models "Risker/models/postgres"

	"gorm.io/gorm"
)

// Function to check if a lobby exists
func CheckLobbyExists(db *gorm.DB, lobbyID string) (*models.Lobby, error) {
	var lobby models.Lobby
	result := db.Where("id = ?", lobbyID).First(&lobby)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("lobby not found")
		}
		return nil, result.Error
	}

	return &lobby, nil
}

func IsPlayerInLobby(db *gorm.DB, lobbyID string, playerID string) (bool, error) {
	var count int64
	err := db.Model(&models.LobbyPlayer{}).
		Where("lobby_id = ? AND player_id = ?", lobbyID, playerID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Counts the members of a lobby from the durable store.
func CountLobbyPlayers(db *gorm.DB, lobbyID string) (int64, error) {
	var count int64
	err := db.Model(&models.LobbyPlayer{}).
		Where("lobby_id = ?", lobbyID).
		Count(&count).Error
	return count, err
}
