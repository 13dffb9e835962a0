package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mentorlink/booking-service/internal/infrastructure/persistence"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations. Goose needs a *sql.DB, so a
// stdlib adapter is opened over the pool and closed after the run.
func Migrate(ctx context.Context, db *persistence.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
