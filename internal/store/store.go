// Package store persists compute run history in SQLite or PostgreSQL.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geocontext/internal/model"
)

// Store records compute runs.
type Store interface {
	Migrate(ctx context.Context) error
	CreateRun(ctx context.Context, run *model.Run) error
	CompleteRun(ctx context.Context, runID string, durationMS int64) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	Close() error
}

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Status model.RunStatus
	Limit  int
	Offset int
}

// Pool is the subset of pgxpool.Pool the postgres store uses.
// pgxmock satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// New opens a store for the given driver ("sqlite" or "postgres").
func New(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
