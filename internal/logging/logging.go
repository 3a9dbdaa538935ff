package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"devboard/internal/config"
)

// DefaultMaxLogFiles is the rotation limit used when nothing else is configured
const DefaultMaxLogFiles = 1000

// Logger is the public logger instance accessible from all packages.
// It discards everything until Initialize is called.
var Logger = discard()

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Initialize sets up the logger based on the debug flag and configuration.
// It returns the path of the log file in use, or "" when logging is discarded.
func Initialize(debug bool, debugFile string, maxLogFiles int) (string, error) {
	// A parent devboard process passes its choices down through the environment
	inherited := os.Getenv("DEVBOARD_DEBUG") == "1"
	if inherited {
		debug = true
	}
	if debugFile == "" {
		debugFile = os.Getenv("DEVBOARD_DEBUG_FILE")
	}
	if env := os.Getenv("DEVBOARD_MAX_LOG_FILES"); env != "" && maxLogFiles == DefaultMaxLogFiles {
		if parsed, err := strconv.Atoi(env); err == nil {
			maxLogFiles = parsed
		}
	}

	if !debug && debugFile == "" {
		Logger = discard()
		return "", nil
	}

	logFilePath, err := prepareLogFile(debugFile, maxLogFiles)
	if err != nil {
		return "", err
	}

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}

	Logger = slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("pid", os.Getpid())

	if !inherited {
		Logger.Info("Debug logging initialized", "log_file", logFilePath)
		fmt.Fprintf(os.Stderr, "Debug mode enabled. Logs: %s\n", logFilePath)
	}

	return logFilePath, nil
}

// prepareLogFile returns the path to log into. An explicit file is used as
// is; otherwise a fresh uuid-named file is placed in LogDir after rotation.
func prepareLogFile(debugFile string, maxLogFiles int) (string, error) {
	dir := LogDir()
	if debugFile != "" {
		dir = filepath.Dir(debugFile)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	if debugFile != "" {
		return debugFile, nil
	}

	if maxLogFiles > 0 {
		if err := rotateLogs(dir, maxLogFiles); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}
	return filepath.Join(dir, uuid.NewString()+".log"), nil
}

// SetOutput points the logger at w. Used by tests that assert on log lines.
func SetOutput(w io.Writer, level slog.Level) {
	Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// LogDir is where rotated debug logs live
func LogDir() string {
	return filepath.Join(config.GetHome(), "logs")
}

// rotateLogs keeps the newest maxLogFiles-1 logs in dir so one more fits
func rotateLogs(dir string, maxLogFiles int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	var logs []logFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logFile{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}

	keep := maxLogFiles - 1
	if len(logs) <= keep {
		return nil
	}

	// Newest first; everything past keep goes
	slices.SortFunc(logs, func(a, b logFile) int { return b.modTime.Compare(a.modTime) })

	var errs []error
	for _, l := range logs[keep:] {
		if err := os.Remove(l.path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
