package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/fitlog/internal/config"
	"github.com/claude/fitlog/internal/models"
	"github.com/google/uuid"
)

// Store is the routine store selected by configuration.
type Store interface {
	SaveRoutine(ctx context.Context, id uuid.UUID, r *models.Routine) error
	LoadRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error)
	ListRoutines(ctx context.Context) ([]RoutineSummary, error)
	DeleteRoutine(ctx context.Context, id uuid.UUID) error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLite)(nil)
)

// Open connects to the configured store. For postgres, pending migrations are
// applied first. The returned func releases the store.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := OpenSQLite(cfg.Storage.SQLiteDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite store opened", "dir", cfg.Storage.SQLiteDir)
		return db, func() { db.Close() }, nil

	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		if err := RunMigrations(dsn); err != nil {
			return nil, nil, fmt.Errorf("migrating: %w", err)
		}
		log.Info("migrations applied")
		db, err := New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting: %w", err)
		}
		return db, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
