package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitlog-backend/config"
	"fitlog-backend/controllers"
	"fitlog-backend/routes"
	"fitlog-backend/services"
	"fitlog-backend/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// dispatcher передает рассылку в фон и умеет дождаться ее при остановке
type dispatcher interface {
	services.FanoutDispatcher
	Wait()
}

// server собранное приложение со всеми сервисами
type server struct {
	app        *fiber.App
	hub        *services.Hub
	users      *services.UserService
	follows    *services.FollowService
	logs       *services.LogService
	routines   *services.RoutineService
	fanout     *services.FanoutService
	feed       *services.FeedService
	dispatcher dispatcher
}

// newServer связывает сервисы, контроллеры и маршруты.
// newDispatcher выбирает, как рассылка уходит из запроса в фон.
func newServer(cfg *config.Config, db *gorm.DB, store services.ActivityStore, log *zap.Logger,
	newDispatcher func(*services.FanoutService) dispatcher) *server {

	s := &server{
		hub:      services.NewHub(log.Named("ws")),
		users:    services.NewUserService(db),
		follows:  services.NewFollowService(db),
		logs:     services.NewLogService(db),
		routines: services.NewRoutineService(db),
	}

	s.fanout = services.NewFanoutService(s.users, s.follows, store, log.Named("fanout"), cfg.Feed.Workers)
	s.fanout.SetNotifier(s.hub)
	s.feed = services.NewFeedService(store, s.logs, log.Named("feed"))
	s.hub.SetUnreadCounter(s.feed)
	s.dispatcher = newDispatcher(s.fanout)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	if cfg.Debug {
		app.Use(fiberlogger.New())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	routes.SetupAuthRoutes(app, controllers.NewAuthController(s.users))
	routes.SetupLogRoutes(app, controllers.NewLogController(s.logs, s.dispatcher))
	routes.SetupFollowRoutes(app, controllers.NewFollowController(s.follows))
	routes.SetupUpdateRoutes(app, controllers.NewFeedController(s.feed))
	routes.SetupRoutineRoutes(app, controllers.NewRoutineController(s.routines))
	routes.SetupUserRoutes(app, controllers.NewUserController(s.users, s.follows))

	// WebSocket маршрут
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.hub.HandleWebSocket))

	// Общий health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":       "ok",
			"message":      "Fitlog Backend is running",
			"feed_backend": cfg.Feed.Backend,
			"timestamp":    time.Now().Unix(),
		})
	})

	s.app = app
	return s
}

// openActivityStore подключает хранилище лент, выбранное в конфигурации.
// Возвращаемая функция закрывает соединение.
func openActivityStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (services.ActivityStore, func(), error) {
	switch cfg.Feed.Backend {
	case config.FeedBackendMongo:
		client, err := storage.NewMongoClient(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		store := storage.NewMongoActivityStore(client.Database(cfg.Mongo.Database), cfg.Feed.Cap)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		return store, func() { _ = client.Disconnect(context.Background()) }, nil

	case config.FeedBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return storage.NewRedisActivityStore(client, cfg.Feed.Cap), func() { _ = client.Close() }, nil

	default:
		return storage.NewSQLActivityStore(db, cfg.Feed.Cap), func() {}, nil
	}
}
