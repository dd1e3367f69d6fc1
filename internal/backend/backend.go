// Package backend opens the platform's PostgreSQL database and provisions the
// schema the demo panels rely on.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clouddemo/internal/backend/migrations"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var ErrNoDSN = errors.New("database DSN is not configured")

var (
	sqlOpen   = sql.Open
	gooseUp   = goose.UpContext
	gooseVers = goose.GetDBVersionContext
)

// Open connects to the backend database through the pgx driver and verifies
// the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema migrations and returns the resulting
// schema version.
func Migrate(ctx context.Context, db *sql.DB, log logging.Logger) (int64, error) {
	goose.SetBaseFS(migrations.Migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	log.Info(ctx, "applying backend migrations")
	if err := gooseUp(ctx, db, "."); err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	v, err := gooseVers(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	log.Info(ctx, "backend schema ready", "version", v)
	return v, nil
}
