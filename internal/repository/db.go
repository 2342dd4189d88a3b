package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL, импортируем для регистрации
	"github.com/pressly/goose/v3"

	"github.com/maynagashev/autoassist/internal/config"
	"github.com/maynagashev/autoassist/internal/repository/migrations"
)

// NewPostgresDB создает и возвращает новое подключение к PostgreSQL с настроенным пулом.
func NewPostgresDB(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (*sqlx.DB, error) {
	log.Info("Подключение к PostgreSQL...")

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, wrapErr("connect to postgres", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	log.Info("Соединение с PostgreSQL успешно установлено", "max_open_conns", cfg.MaxOpenConns)
	return db, nil
}

// Migrate применяет миграции схемы.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
