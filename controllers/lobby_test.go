package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/ping", Ping)
	router.GET("/lobbies", GetAllLobbies(db))
	router.GET("/lobbies/:lobby_id", GetLobbyInfo(db))
	return router, mock
}

func TestPing(t *testing.T) {
	router, _ := setupTestRouter(t)

	req, _ := http.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetLobbyInfo(t *testing.T) {
	router, mock := setupTestRouter(t)

	mock.ExpectQuery(`SELECT (.+) FROM "lobbies" WHERE id = \$1`).
		WithArgs("test-lobby", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "max_commanders", "max_pawns", "status", "created_at", "data"}).
			AddRow("test-lobby", "Testers", 2, 4, "waiting", time.Now(), nil))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "lobby_players"`).
		WithArgs("test-lobby").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	req, _ := http.NewRequest("GET", "/lobbies/test-lobby", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "test-lobby", response["lobby_id"])
	assert.Equal(t, "Testers", response["name"])
	assert.Equal(t, float64(2), response["max_commanders"])
	assert.Equal(t, float64(4), response["max_pawns"])
	assert.Equal(t, float64(3), response["player_count"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLobbyInfoNotFound(t *testing.T) {
	router, mock := setupTestRouter(t)

	mock.ExpectQuery(`SELECT (.+) FROM "lobbies" WHERE id = \$1`).
		WithArgs("nonexistent", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "max_commanders", "max_pawns", "status", "created_at", "data"}))

	req, _ := http.NewRequest("GET", "/lobbies/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllLobbies(t *testing.T) {
	router, mock := setupTestRouter(t)

	mock.ExpectQuery(`SELECT (.+) FROM "lobbies"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "max_commanders", "max_pawns", "status", "created_at", "data"}).
			AddRow("lobby-1", "First", 2, 4, "waiting", time.Now(), nil).
			AddRow("lobby-2", "Second", 3, 6, "in_progress", time.Now(), nil))

	req, _ := http.NewRequest("GET", "/lobbies", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "lobby-1", response[0]["lobby_id"])
	assert.Equal(t, "in_progress", response[1]["status"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
