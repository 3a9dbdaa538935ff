package cmd

import (
	adapterstorage "devboard/internal/adapters/storage"
	"devboard/internal/logging"
	"devboard/internal/ports"
	"devboard/internal/services"
)

// Container holds all dependencies for the application
type Container struct {
	// Repository is the full storage surface
	Repository ports.Repository

	// Services
	TemplateService *services.TemplateService
}

// NewContainer opens the database at dbPath and wires the services on top of it
func NewContainer(dbPath string, busyTimeoutMs int) (*Container, error) {
	logging.Logger.Debug("Creating container", "db", dbPath, "busy_timeout_ms", busyTimeoutMs)

	repo, err := adapterstorage.NewSQLiteRepositoryWithOptions(dbPath, adapterstorage.Options{
		BusyTimeoutMs: busyTimeoutMs,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Repository:      repo,
		TemplateService: services.NewTemplateService(repo),
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.Repository != nil {
		return c.Repository.Close()
	}
	return nil
}
