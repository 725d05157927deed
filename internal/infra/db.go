package infra

import (
	"context"
	"database/sql"
)

// DB is the minimal query surface repositories depend on. It is satisfied by
// *sql.DB and *sql.Tx, which keeps transaction support flexible without
// leaking a driver type into the repositories.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
