package main

import (
	"context"
	"errors"

	"fitlog-backend/config"
	"fitlog-backend/logger"
	"fitlog-backend/models"
	"fitlog-backend/services"
	"fitlog-backend/storage"
	"fitlog-backend/utils"

	"go.uber.org/zap"
)

// Заполняет базу демонстрационными пользователями, подписками и записями.
// Рассылка выполняется синхронно, ленты готовы сразу после запуска.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	log := logger.Log

	db, err := models.InitDB(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	users := services.NewUserService(db)
	follows := services.NewFollowService(db)
	logs := services.NewLogService(db)
	store := storage.NewSQLActivityStore(db, cfg.Feed.Cap)
	fanout := services.NewFanoutService(users, follows, store, log, cfg.Feed.Workers)

	hash, err := utils.HashPassword("password123")
	if err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}

	people := []struct{ name, email string }{
		{"Alice", "alice@fitlog.dev"},
		{"Bob", "bob@fitlog.dev"},
		{"Carol", "carol@fitlog.dev"},
	}
	ids := make([]uint, 0, len(people))
	for _, p := range people {
		u, err := users.Create(ctx, p.name, p.email, hash)
		if errors.Is(err, services.ErrEmailTaken) {
			u, err = users.GetByEmail(ctx, p.email)
		}
		if err != nil {
			log.Fatal("failed to create user", zap.String("email", p.email), zap.Error(err))
		}
		ids = append(ids, u.ID)
	}

	// Bob и Carol подписаны на Alice, Alice на Bob
	edges := [][2]uint{{ids[1], ids[0]}, {ids[2], ids[0]}, {ids[0], ids[1]}}
	for _, e := range edges {
		if err := follows.Follow(ctx, e[0], e[1]); err != nil && !errors.Is(err, services.ErrAlreadyFollowing) {
			log.Fatal("failed to follow", zap.Uint("follower", e[0]), zap.Uint("target", e[1]), zap.Error(err))
		}
	}

	entries := []struct {
		author uint
		text   string
	}{
		{ids[0], "5x5 squat @100kg"},
		{ids[1], "Easy 5k run, 27:30"},
		{ids[0], "Bench 3x8 @70kg, felt strong"},
	}
	for _, e := range entries {
		entry, err := logs.Append(ctx, e.author, e.text)
		if err != nil {
			log.Fatal("failed to append log", zap.Error(err))
		}
		n := fanout.PushLogToFollowers(ctx, e.author, entry.Timestamp)
		log.Info("seeded log entry", zap.Uint("author", e.author), zap.Int("delivered", n))
	}

	log.Info("seed data applied")
}
