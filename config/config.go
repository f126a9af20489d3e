package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Бэкенды хранилища ленты
const (
	FeedBackendSQL   = "sql"
	FeedBackendMongo = "mongo"
	FeedBackendRedis = "redis"
)

var (
	ErrUnknownFeedBackend = errors.New("unknown feed backend")
	ErrInvalidFeedLimits  = errors.New("feed cap and workers must be positive")
)

// Config конфигурация приложения
type Config struct {
	Port        string      `koanf:"port"`
	CORSOrigins string      `koanf:"cors_origins"`
	DatabaseURL string      `koanf:"database_url"`
	SQLitePath  string      `koanf:"sqlite_path"`
	JWTSecret   string      `koanf:"jwt_secret"`
	Debug       bool        `koanf:"debug"`
	Feed        FeedConfig  `koanf:"feed"`
	Mongo       MongoConfig `koanf:"mongo"`
	Redis       RedisConfig `koanf:"redis"`
	NATS        NATSConfig  `koanf:"nats"`
}

// FeedConfig настройки ленты активности
type FeedConfig struct {
	// Backend где хранятся ленты: sql, mongo или redis
	Backend string `koanf:"backend"`
	// Cap сколько записей держать в ленте одного пользователя
	Cap int `koanf:"cap"`
	// Workers сколько лент одного автора обновляется параллельно
	Workers int `koanf:"workers"`
}

// MongoConfig подключение к MongoDB
type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

// RedisConfig подключение к Redis
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// NATSConfig подключение к NATS. Пустой URL означает доставку в горутине процесса.
type NATSConfig struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Port:        "8080",
		CORSOrigins: "http://localhost:3000,http://127.0.0.1:3000",
		SQLitePath:  "fitlog.db",
		JWTSecret:   "fitlog-secret-key-change-in-production",
		Feed: FeedConfig{
			Backend: FeedBackendSQL,
			Cap:     50,
			Workers: 8,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "fitlog",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		NATS: NATSConfig{
			Subject: "fitlog.log.created",
		},
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем TOML файл
// из FITLOG_CONFIG (если задан), затем переменные окружения FITLOG_*.
// Вложенные ключи задаются через двойное подчеркивание: FITLOG_FEED__BACKEND.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("FITLOG_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider("FITLOG_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "FITLOG_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Переменные окружения без префикса, как на старом деплое
	overrideFromEnv(&cfg.Port, "PORT")
	overrideFromEnv(&cfg.DatabaseURL, "DATABASE_URL")
	overrideFromEnv(&cfg.JWTSecret, "JWT_SECRET")
	overrideFromEnv(&cfg.CORSOrigins, "CORS_ORIGINS")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.Feed.Backend {
	case FeedBackendSQL, FeedBackendMongo, FeedBackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFeedBackend, c.Feed.Backend)
	}
	if c.Feed.Cap <= 0 || c.Feed.Workers <= 0 {
		return ErrInvalidFeedLimits
	}
	return nil
}

func overrideFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
