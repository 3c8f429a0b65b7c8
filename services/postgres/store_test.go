package postgres

import (
	models "Risker/models/postgres"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewStore(db), mock
}

func lobbyColumns() []string {
	return []string{"id", "name", "max_commanders", "max_pawns", "status", "created_at", "data"}
}

func TestGetLobbyFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM "lobbies" WHERE id = \$1`).
		WithArgs("lobby-1", 1).
		WillReturnRows(sqlmock.NewRows(lobbyColumns()).
			AddRow("lobby-1", "Test", 2, 4, "waiting", time.Now(), nil))

	lobby, err := store.GetLobby(context.Background(), "lobby-1")
	assert.NoError(t, err)
	require.NotNil(t, lobby)
	assert.Equal(t, "lobby-1", lobby.ID)
	assert.Equal(t, 2, lobby.MaxCommanders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLobbyNotFoundIsNotAnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM "lobbies" WHERE id = \$1`).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows(lobbyColumns()))

	lobby, err := store.GetLobby(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, lobby)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLobbyStoreFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM "lobbies" WHERE id = \$1`).
		WillReturnError(errors.New("connection refused"))

	lobby, err := store.GetLobby(context.Background(), "lobby-1")
	assert.Error(t, err)
	assert.Nil(t, lobby)
}

func TestCreateLobbyAssignsIdentityAndDefaults(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "lobbies"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	lobby := models.Lobby{Name: "Fresh"}
	err := store.CreateLobby(context.Background(), &lobby)
	assert.NoError(t, err)
	assert.NotEmpty(t, lobby.ID)
	assert.Equal(t, models.DefaultMaxCommanders, lobby.MaxCommanders)
	assert.Equal(t, models.DefaultMaxPawns, lobby.MaxPawns)
	assert.Equal(t, models.LobbyStatusWaiting, lobby.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPlayerToLobbyDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "lobby_players"`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := store.AddPlayerToLobby(context.Background(), "lobby-1", "p1")
	assert.ErrorIs(t, err, ErrDuplicateMembership)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPlayerToLobbyStoreFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "lobby_players"`).
		WillReturnError(errors.New("connection refused"))
	mock.ExpectRollback()

	err := store.AddPlayerToLobby(context.Background(), "lobby-1", "p1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateMembership)
}

func TestRemovePlayerFromLobby(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "lobby_players" WHERE lobby_id = \$1 AND player_id = \$2`).
		WithArgs("lobby-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RemovePlayerFromLobby(context.Background(), "lobby-1", "p1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLobbyPlayers(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM "players" JOIN lobby_players`).
		WithArgs("lobby-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role", "created_at", "data"}).
			AddRow("c1", "Ana", "commander", time.Now(), nil).
			AddRow("p1", "Bea", "pawn", time.Now(), nil))

	players, err := store.GetLobbyPlayers(context.Background(), "lobby-1")
	assert.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "commander", players[0].Role)
	assert.Equal(t, "pawn", players[1].Role)
}

func TestAppendCommand(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "commands"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	cmd := models.Command{
		ClientID:    "conn-1",
		MessageType: "lobby",
		Action:      "create",
		Payload:     []byte(`{"type":"lobby","action":"create"}`),
		Timestamp:   time.Now(),
	}
	err := store.AppendCommand(context.Background(), &cmd)
	assert.NoError(t, err)
	assert.NotEmpty(t, cmd.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLobbyStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "lobbies" SET "status"=\$1 WHERE id = \$2`).
		WithArgs("in_progress", "lobby-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UpdateLobbyStatus(context.Background(), "lobby-1", "in_progress")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
