package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitlog-backend/config"
	"fitlog-backend/models"
	"fitlog-backend/services"
	"fitlog-backend/storage"
	"fitlog-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB создает тестовую базу данных в памяти
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

// setupTestServer собирает приложение поверх SQLite в памяти.
// Рассылка идет в горутине, тесты дожидаются ее через dispatcher.Wait.
func setupTestServer(t *testing.T) (*server, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	cfg := config.Default()
	store := storage.NewSQLActivityStore(db, cfg.Feed.Cap)

	srv := newServer(cfg, db, store, zap.NewNop(), func(f *services.FanoutService) dispatcher {
		return services.NewAsyncDispatcher(f, zap.NewNop())
	})

	ctx, cancel := context.WithCancel(context.Background())
	go srv.hub.Run(ctx)
	t.Cleanup(func() {
		srv.dispatcher.Wait()
		cancel()
	})
	return srv, db
}

// createTestUser создает пользователя и возвращает его ID и токен
func createTestUser(t *testing.T, db *gorm.DB, name, email string) (uint, string) {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	user := models.User{Name: name, Email: email, PasswordHash: hash}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateJWT(user.ID, user.Email)
	require.NoError(t, err)
	return user.ID, token
}

// apiResponse ответ API с сырыми данными
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

// doRequest выполняет запрос к приложению и разбирает ответ
func doRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) (*http.Response, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed apiResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), string(raw))
	}
	return resp, parsed
}

// decodeData разбирает поле data ответа
func decodeData(t *testing.T, resp apiResponse, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}
