package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"devboard/internal/config"
	"devboard/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	DB          string           `help:"Path to the SQLite database (overrides $DEVBOARD_DB and settings.json)" type:"path"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`
	Metrics     bool             `help:"Print storage metrics after the command finishes"`

	Epics    EpicsCmd    `cmd:"epics" help:"Browse epics (list, children)"`
	Migrate  MigrateCmd  `cmd:"migrate" help:"Apply pending schema migrations and print the schema version"`
	Projects ProjectsCmd `cmd:"projects" help:"Manage projects (list, view, del, import)"`
	Settings SettingsCmd `cmd:"settings" help:"Show settings (meta)"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// AfterApply initializes logging and opens the database.
// Precedence: CLI flags > env vars > settings.json > defaults
func (c *CLI) AfterApply(ctx *kong.Context) error {
	if c.settings != nil {
		if c.MaxLogFiles == logging.DefaultMaxLogFiles {
			if _, hasEnv := os.LookupEnv("DEVBOARD_MAX_LOG_FILES"); !hasEnv {
				if c.settings.MaxLogFiles != nil {
					c.MaxLogFiles = *c.settings.MaxLogFiles
				}
			}
		}

		if !c.Debug {
			if _, hasEnv := os.LookupEnv("DEVBOARD_DEBUG"); !hasEnv {
				if c.settings.Debug != nil && *c.settings.Debug {
					c.Debug = true
				}
			}
		}
	}

	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// The GORM logger reads DEVBOARD_DEBUG when the repository is opened
	if c.Debug || c.DebugFile != "" {
		os.Setenv("DEVBOARD_DEBUG", "1")
		if logFilePath != "" {
			os.Setenv("DEVBOARD_DEBUG_FILE", logFilePath)
		}
	}

	// Logging must be initialized before the container opens the database
	container, err := NewContainer(c.settings.ResolveDBPath(c.DB), c.settings.ResolveBusyTimeout())
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Container = container
	ctx.Bind(container)

	return nil
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Metrics {
		if err := printMetrics(os.Stderr); err != nil {
			logging.Logger.Warn("Failed to print metrics", "error", err)
		}
	}
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}
