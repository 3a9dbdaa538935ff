package cmd

import (
	"fmt"

	"devboard/internal/logging"
)

// MigrateCmd applies pending migrations. Opening the database already runs
// them, so the command only reports where the schema ended up.
type MigrateCmd struct{}

// Run executes the migrate command
func (m *MigrateCmd) Run(container *Container) error {
	version, err := container.Repository.SchemaVersion()
	if err != nil {
		logging.Logger.Error("Failed to read schema version", "error", err)
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logging.Logger.Info("Schema is up to date", "version", version)
	fmt.Printf("Schema version: %d\n", version)
	return nil
}
