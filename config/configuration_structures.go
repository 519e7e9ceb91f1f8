package config

import "time"

type DatabaseConfig struct {
	// postgres (lib/pq) или pgx (jackc/pgx/v5/stdlib)
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// RedisConfig : пустой URL отключает Redis, очистка тогда идет без блокировки
type RedisConfig struct {
	URL string `yaml:"url"`
}

type JWTConfig struct {
	SecretKey           string        `yaml:"secret_key"`
	AccessTokenTTL      time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL     time.Duration `yaml:"refresh_token_ttl"`
	RotateRefreshTokens bool          `yaml:"rotate_refresh_tokens"`
}

type CleanupConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Retention time.Duration `yaml:"retention"`
	LockTTL   time.Duration `yaml:"lock_ttl"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}
