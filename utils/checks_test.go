package utils

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestCheckLobbyExists(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "name"}).AddRow("l1", "Friday Night")
	mock.ExpectQuery(`SELECT \* FROM "lobbies" WHERE id = \$1`).
		WithArgs("l1", 1).
		WillReturnRows(rows)

	lobby, err := CheckLobbyExists(db, "l1")
	require.NoError(t, err)
	assert.Equal(t, "Friday Night", lobby.Name)

	mock.ExpectQuery(`SELECT \* FROM "lobbies" WHERE id = \$1`).
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = CheckLobbyExists(db, "missing")
	assert.EqualError(t, err, "lobby not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsPlayerInLobby(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "lobby_players" WHERE lobby_id = \$1 AND player_id = \$2`).
		WithArgs("l1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	in, err := IsPlayerInLobby(db, "l1", "p1")
	require.NoError(t, err)
	assert.True(t, in)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "lobby_players" WHERE lobby_id = \$1 AND player_id = \$2`).
		WithArgs("l1", "p2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	in, err = IsPlayerInLobby(db, "l1", "p2")
	require.NoError(t, err)
	assert.False(t, in)
	assert.NoError(t, mock.ExpectationsWereMet())
}
