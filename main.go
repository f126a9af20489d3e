package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitlog-backend/config"
	"fitlog-backend/logger"
	"fitlog-backend/models"
	"fitlog-backend/services"
	"fitlog-backend/utils"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	logger.SetDebug(cfg.Debug)
	log := logger.Log
	defer log.Sync()

	utils.SetJWTSecret(cfg.JWTSecret)

	// Инициализация базы данных
	db, err := models.InitDB(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openActivityStore(ctx, cfg, db)
	if err != nil {
		log.Fatal("failed to open activity store", zap.String("backend", cfg.Feed.Backend), zap.Error(err))
	}
	defer closeStore()

	// С NATS рассылка уходит в очередь и выполняется подписчиком,
	// без него в отдельной горутине этого же процесса
	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		nc, err = nats.Connect(cfg.NATS.URL, nats.Name("fitlog-backend"))
		if err != nil {
			log.Fatal("failed to connect to nats", zap.Error(err))
		}
	}

	srv := newServer(cfg, db, store, log, func(f *services.FanoutService) dispatcher {
		if nc != nil {
			return services.NewNATSDispatcher(nc, cfg.NATS.Subject, log.Named("nats"))
		}
		return services.NewAsyncDispatcher(f, log.Named("fanout"))
	})

	if nc != nil {
		if _, err := services.SubscribeFanout(nc, cfg.NATS.Subject, srv.fanout); err != nil {
			log.Fatal("failed to subscribe to log events", zap.Error(err))
		}
	}

	go srv.hub.Run(ctx)

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("feed_backend", cfg.Feed.Backend),
			zap.Bool("nats", nc != nil))
		if err := srv.app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}

	srv.dispatcher.Wait()
	if nc != nil {
		if err := nc.Drain(); err != nil {
			log.Warn("nats drain failed", zap.Error(err))
		}
	}
}
