package postgres

import (
	models "Risker/models/postgres"
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrDuplicateMembership is returned when a (lobby, player) membership edge
// already exists. The caller treats it as a rejected rejoin, not a crash.
var ErrDuplicateMembership = errors.New("player is already in the lobby")

// uniqueViolation is the PostgreSQL error code for constraint class 23505.
const uniqueViolation = "23505"

/*
 * 'Store' is the durable mirror of the lobby/player/membership state plus
 * the append-only command audit log. Lookups distinguish "row missing"
 * (nil, nil) from "store failed" (nil, err). It owns no in-memory state:
 * the registry in services/game stays authoritative while the process runs.
 */
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// --- Lobby operations ---

// CreateLobby inserts the lobby row. Identity and defaults are filled by the
// model's BeforeCreate hook when left empty.
func (s *Store) CreateLobby(ctx context.Context, lobby *models.Lobby) error {
	return s.DB.WithContext(ctx).Create(lobby).Error
}

func (s *Store) GetLobby(ctx context.Context, lobbyID string) (*models.Lobby, error) {
	var lobby models.Lobby
	err := s.DB.WithContext(ctx).Where("id = ?", lobbyID).First(&lobby).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lobby, nil
}

func (s *Store) ListLobbies(ctx context.Context) ([]models.Lobby, error) {
	var lobbies []models.Lobby
	if err := s.DB.WithContext(ctx).Find(&lobbies).Error; err != nil {
		return nil, err
	}
	return lobbies, nil
}

// UpdateLobbyStatus flips the status column, e.g. when a match starts.
func (s *Store) UpdateLobbyStatus(ctx context.Context, lobbyID, status string) error {
	return s.DB.WithContext(ctx).Model(&models.Lobby{}).
		Where("id = ?", lobbyID).
		Update("status", status).Error
}

// DeleteLobby removes the lobby row. Membership edges go with it via the
// cascade constraint. Not exercised by the live protocol; kept for
// operational tooling.
func (s *Store) DeleteLobby(ctx context.Context, lobbyID string) error {
	return s.DB.WithContext(ctx).Where("id = ?", lobbyID).Delete(&models.Lobby{}).Error
}

// --- Player operations ---

func (s *Store) CreatePlayer(ctx context.Context, player *models.Player) error {
	return s.DB.WithContext(ctx).Create(player).Error
}

func (s *Store) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	var player models.Player
	err := s.DB.WithContext(ctx).Where("id = ?", playerID).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// DeletePlayer removes a player row. Used to compensate a join that failed
// after the row was created.
func (s *Store) DeletePlayer(ctx context.Context, playerID string) error {
	return s.DB.WithContext(ctx).Where("id = ?", playerID).Delete(&models.Player{}).Error
}

// --- Membership operations ---

// AddPlayerToLobby inserts the membership edge. A second insert of the same
// pair hits the composite primary key and comes back as
// ErrDuplicateMembership with the existing edge untouched.
func (s *Store) AddPlayerToLobby(ctx context.Context, lobbyID, playerID string) error {
	edge := models.LobbyPlayer{
		LobbyID:  lobbyID,
		PlayerID: playerID,
		JoinedAt: time.Now(),
	}
	err := s.DB.WithContext(ctx).Create(&edge).Error
	if isUniqueViolation(err) {
		return ErrDuplicateMembership
	}
	return err
}

func (s *Store) RemovePlayerFromLobby(ctx context.Context, lobbyID, playerID string) error {
	return s.DB.WithContext(ctx).
		Where("lobby_id = ? AND player_id = ?", lobbyID, playerID).
		Delete(&models.LobbyPlayer{}).Error
}

// GetLobbyPlayers returns the players joined to a lobby, resolved through
// the membership edges.
func (s *Store) GetLobbyPlayers(ctx context.Context, lobbyID string) ([]models.Player, error) {
	var players []models.Player
	err := s.DB.WithContext(ctx).
		Joins("JOIN lobby_players ON lobby_players.player_id = players.id").
		Where("lobby_players.lobby_id = ?", lobbyID).
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// --- Command audit log ---

// AppendCommand records one inbound message. Write-only from the server's
// perspective; the processed flag belongs to whatever drains the table.
func (s *Store) AppendCommand(ctx context.Context, cmd *models.Command) error {
	return s.DB.WithContext(ctx).Create(cmd).Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
