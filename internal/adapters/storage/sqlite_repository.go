package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devboard/internal/config"
	"devboard/internal/domain"
	"devboard/internal/logging"
	"devboard/internal/metrics"
	"devboard/internal/ports"
)

// SQLiteRepository implements ports.Repository using GORM
type SQLiteRepository struct {
	db *gorm.DB
}

// Verify interface compliance at compile time
var _ ports.Repository = (*SQLiteRepository)(nil)

// Options tunes how the database is opened
type Options struct {
	BusyTimeoutMs int
}

// gormLogger feeds GORM's query log into the devboard logger and every
// query duration into the store metrics.
type gormLogger struct {
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger() logger.Interface {
	l := &gormLogger{level: logger.Silent, slowThreshold: 200 * time.Millisecond}
	if os.Getenv("DEVBOARD_DEBUG") == "1" {
		l.level = logger.Info
	}
	return l
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) log(ctx context.Context, threshold logger.LogLevel, level slog.Level, msg string, data []any) {
	if l.level >= threshold {
		logging.Logger.Log(ctx, level, fmt.Sprintf(msg, data...), "component", "gorm")
	}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.log(ctx, logger.Info, slog.LevelInfo, msg, data)
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.log(ctx, logger.Warn, slog.LevelWarn, msg, data)
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.log(ctx, logger.Error, slog.LevelError, msg, data)
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	metrics.QueryDuration.Observe(elapsed.Seconds())

	if l.level == logger.Silent {
		return
	}

	level, msg := slog.LevelDebug, "query"
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		level, msg = slog.LevelError, "query failed"
	case elapsed > l.slowThreshold && l.level >= logger.Warn:
		level, msg = slog.LevelWarn, "slow query"
	case l.level < logger.Info:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.Duration("duration", elapsed),
		slog.String("sql", sql),
		slog.Int64("rows", rows),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	logging.Logger.LogAttrs(ctx, level, msg, attrs...)
}

// buildDSN puts the pragmas in the DSN so every pooled connection gets them
func buildDSN(dbPath string, busyTimeoutMs int) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL",
		dbPath, busyTimeoutMs)
}

// NewSQLiteRepository opens (and migrates) the database at dbPath
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	return NewSQLiteRepositoryWithOptions(dbPath, Options{BusyTimeoutMs: config.DefaultBusyTimeoutMs})
}

// NewSQLiteRepositoryWithOptions opens (and migrates) the database at dbPath
func NewSQLiteRepositoryWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	dbPath = config.ExpandPath(dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if opts.BusyTimeoutMs <= 0 {
		opts.BusyTimeoutMs = config.DefaultBusyTimeoutMs
	}

	db, err := gorm.Open(sqlite.Open(buildDSN(dbPath, opts.BusyTimeoutMs)), &gorm.Config{
		PrepareStmt:    false,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	if err := migrate(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logging.Logger.Debug("Opened database", "path", dbPath)

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// transact runs fn inside a GORM transaction, retrying on a busy database,
// and classifies the resulting error.
func (r *SQLiteRepository) transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return classify(withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(fn)
	}, 3))
}

// now returns the timestamp stamped on created and mutated rows
func now() time.Time {
	return time.Now().UTC()
}

// classify maps driver and GORM errors onto the domain error kinds.
// Errors that already carry a kind pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *domain.Error
	var conflictErr *domain.VersionConflictError
	switch {
	case errors.As(err, &domainErr), errors.As(err, &conflictErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &domain.Error{Kind: domain.ErrNotFound, Message: "record not found", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey),
		isConstraint(err, sqlite3.ErrConstraintUnique),
		isConstraint(err, sqlite3.ErrConstraintPrimaryKey):
		return &domain.Error{Kind: domain.ErrConflict, Message: "duplicate key", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated),
		isConstraint(err, sqlite3.ErrConstraintForeignKey):
		return &domain.Error{Kind: domain.ErrConflict, Message: "referenced row is missing or still in use", Err: err}
	default:
		return domain.Storage("store operation failed", err)
	}
}

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == code
}

// withRetry retries operations on SQLITE_BUSY with linear backoff
func withRetry(fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			lastErr = err
			logging.Logger.Debug("database busy, retrying", "attempt", i+1, "error", err)
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries: %w", maxRetries, lastErr)
}
