package config

import (
	"context"
	"fmt"

	"expense-tracker/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

type Database struct {
	*sqlx.DB
}

var gooseUpContext = goose.UpContext

func NewDatabaseConnection(ctx context.Context, dbDriver string, dbConnectionStr string) (*Database, error) {
	database, err := sqlx.ConnectContext(ctx, dbDriver, dbConnectionStr)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ошибка пинга БД: %w", err)
	}

	return &Database{
		database,
	}, nil
}

// Migrate применяет встроенные миграции goose
func (db *Database) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("ошибка выбора диалекта goose: %w", err)
	}

	if err := gooseUpContext(ctx, db.DB.DB, "."); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	return nil
}

func (db *Database) Close() error {
	err := db.DB.Close()
	if err != nil {
		return fmt.Errorf("ошибка закрытия соединения с БД: %w", err)
	}

	return nil
}
