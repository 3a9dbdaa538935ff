package storage

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"devboard/internal/domain"
	"devboard/internal/logging"
	"devboard/internal/metrics"
)

// connPool exposes a dedicated connection to GORM without BeginTx, so
// statements run inside the transaction opened by hand on that connection.
type connPool struct {
	conn *sql.Conn
}

func (p connPool) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return p.conn.PrepareContext(ctx, query)
}

func (p connPool) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.conn.ExecContext(ctx, query, args...)
}

func (p connPool) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return p.conn.QueryContext(ctx, query, args...)
}

func (p connPool) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return p.conn.QueryRowContext(ctx, query, args...)
}

// withRawTx runs fn on a dedicated connection between an explicit
// BEGIN IMMEDIATE and COMMIT. Any error from fn issues ROLLBACK.
func (r *SQLiteRepository) withRawTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return domain.Storage("unable to obtain connection", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return domain.Storage("unable to obtain connection", err)
	}
	defer conn.Close()

	err = withRetry(func() error {
		_, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE")
		return err
	}, 3)
	if err != nil {
		return domain.Storage("unable to begin transaction", err)
	}

	tx := r.db.Session(&gorm.Session{NewDB: true, SkipDefaultTransaction: true, Context: ctx})
	tx.Statement.ConnPool = connPool{conn: conn}

	if err := fn(tx); err != nil {
		rollback(conn, err)
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		rollback(conn, err)
		return domain.Storage("unable to commit transaction", err)
	}
	return nil
}

// rollback undoes the open transaction. A failed rollback is logged and the
// caller keeps returning the error that caused it.
func rollback(conn *sql.Conn, cause error) {
	metrics.TemplateImportRollbacks.Inc()
	if _, err := conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
		logging.Logger.Error("Rollback failed", "error", err, "cause", cause)
		return
	}
	logging.Logger.Debug("Transaction rolled back", "cause", cause)
}
