package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"devboard/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its filesystem, dialect and logger in package state
var migrateMu sync.Mutex

// gooseLogger routes goose output to the devboard logger
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	logging.Logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...any) {
	logging.Logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// migrate applies every pending migration
func migrate(db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the latest applied migration version
func (r *SQLiteRepository) SchemaVersion() (int64, error) {
	sqlDB, err := r.db.DB()
	if err != nil {
		return 0, err
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
