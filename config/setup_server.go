package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const minSecretLength = 32

var (
	ErrMissingSecret     = errors.New("jwt.secret_key не задан")
	ErrWeakSecret        = errors.New("jwt.secret_key короче 32 байт")
	ErrPlaceholderSecret = errors.New("jwt.secret_key содержит значение-заглушку")
)

// Заглушки из примеров конфигов; с ними сервер не стартует
var placeholderSecrets = []string{
	"your-secret-key-here-change-in-production",
	"change-me-change-me-change-me-change-me",
	"changeme",
	"secret",
}

type AppConfig struct {
	DatabaseConfig DatabaseConfig `yaml:"databaseConfig"`
	RedisConfig    RedisConfig    `yaml:"redisConfig"`
	ServerAddr     string         `yaml:"serverAddr"`
	JWT            JWTConfig      `yaml:"jwt"`
	Cleanup        CleanupConfig  `yaml:"cleanup"`
	Logging        LoggingConfig  `yaml:"logging"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		DatabaseConfig: DatabaseConfig{
			Driver:  DriverPostgres,
			Migrate: true,
		},
		ServerAddr: ":8080",
		JWT: JWTConfig{
			AccessTokenTTL:  30 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Cleanup: CleanupConfig{
			Interval:  time.Hour,
			Retention: 24 * time.Hour,
			LockTTL:   5 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultConfigPath : путь конфигурации, если он не задан явно
const DefaultConfigPath = "config.yaml"

// ResolveConfigPath : отсутствующий файл по пути по умолчанию означает
// запуск только на переменных окружения. Явно заданный путь не меняется.
func ResolveConfigPath(path string) string {
	if path != DefaultConfigPath {
		return path
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return path
}

// LoadConfig : значения по умолчанию, затем YAML (если path не пустой),
// затем переменные окружения (в т.ч. из .env). Результат валидируется.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	cfg := DefaultConfig()

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *AppConfig) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		value, ok := lookup(key)
		value = strings.TrimSpace(value)
		return value, ok && value != ""
	}

	stringVars := []struct {
		key    string
		target *string
	}{
		{"DATABASE_URL", &cfg.DatabaseConfig.DSN},
		{"DATABASE_DRIVER", &cfg.DatabaseConfig.Driver},
		{"REDIS_URL", &cfg.RedisConfig.URL},
		{"JWT_SECRET_KEY", &cfg.JWT.SecretKey},
		{"SERVER_ADDR", &cfg.ServerAddr},
		{"LOG_LEVEL", &cfg.Logging.Level},
	}
	for _, s := range stringVars {
		if value, ok := get(s.key); ok {
			*s.target = value
		}
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"ACCESS_TOKEN_TTL", &cfg.JWT.AccessTokenTTL},
		{"REFRESH_TOKEN_TTL", &cfg.JWT.RefreshTokenTTL},
		{"CLEANUP_INTERVAL", &cfg.Cleanup.Interval},
		{"CLEANUP_RETENTION", &cfg.Cleanup.Retention},
	}
	for _, d := range durations {
		value, ok := get(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("некорректное значение %s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if value, ok := get("ROTATE_REFRESH_TOKENS"); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("некорректное значение ROTATE_REFRESH_TOKENS: %w", err)
		}
		cfg.JWT.RotateRefreshTokens = parsed
	}

	return nil
}

// Validate : без секрета подписи сервер не запускается
func (cfg *AppConfig) Validate() error {
	secret := cfg.JWT.SecretKey
	switch {
	case strings.TrimSpace(secret) == "":
		return ErrMissingSecret
	case isPlaceholderSecret(secret):
		return ErrPlaceholderSecret
	case len(secret) < minSecretLength:
		return ErrWeakSecret
	}

	if cfg.JWT.AccessTokenTTL <= 0 || cfg.JWT.RefreshTokenTTL <= 0 {
		return errors.New("время жизни токенов должно быть положительным")
	}
	if cfg.Cleanup.Interval <= 0 {
		return errors.New("cleanup.interval должен быть положительным")
	}
	if cfg.Cleanup.LockTTL <= 0 {
		return errors.New("cleanup.lock_ttl должен быть положительным")
	}
	if cfg.Cleanup.Retention < 0 {
		return errors.New("cleanup.retention не может быть отрицательным")
	}

	switch cfg.DatabaseConfig.Driver {
	case DriverPostgres, DriverPgx:
	default:
		return fmt.Errorf("неизвестный драйвер БД: %q", cfg.DatabaseConfig.Driver)
	}
	if cfg.DatabaseConfig.DSN == "" {
		return errors.New("databaseConfig.dsn не задан")
	}

	return nil
}

func isPlaceholderSecret(secret string) bool {
	for _, placeholder := range placeholderSecrets {
		if strings.EqualFold(strings.TrimSpace(secret), placeholder) {
			return true
		}
	}
	return false
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	database, err := NewDatabaseConnection(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.Migrate {
		if err := database.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, err
		}
	}

	return database, nil
}

// SetupRedis : nil без ошибки, если Redis не настроен
func SetupRedis(ctx context.Context, cfg *RedisConfig) (*RedisClient, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	return NewRedisClient(ctx, cfg)
}
