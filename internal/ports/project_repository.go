package ports

import (
	"context"

	"devboard/internal/domain"
)

// ProjectReader reads projects
type ProjectReader interface {
	GetProject(ctx context.Context, id string) (domain.Project, error)
	ListProjects(ctx context.Context, filter domain.ProjectFilter) (domain.ListResult[domain.Project], error)
}

// ProjectWriter creates, updates and deletes projects. DeleteProject
// removes everything the project owns.
type ProjectWriter interface {
	CreateProject(ctx context.Context, in domain.CreateProjectInput) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (domain.Project, error)
}

// TemplateImporter creates a project from a template atomically
type TemplateImporter interface {
	CreateProjectWithTemplate(ctx context.Context, in domain.CreateProjectInput, tpl domain.ProjectTemplate) (domain.TemplateImportResult, error)
}

// ProjectRepository is the composite project interface
type ProjectRepository interface {
	ProjectReader
	ProjectWriter
	TemplateImporter
}

// StatusRepository manages a project's workflow stages
type StatusRepository interface {
	CreateStatus(ctx context.Context, in domain.CreateStatusInput) (domain.Status, error)
	DeleteStatus(ctx context.Context, id string) error
	GetStatus(ctx context.Context, id string) (domain.Status, error)
	ListStatuses(ctx context.Context, projectID string) ([]domain.Status, error)
	ReorderStatuses(ctx context.Context, projectID string, orderedIDs []string) ([]domain.Status, error)
	UpdateStatus(ctx context.Context, id string, patch domain.StatusPatch) (domain.Status, error)
}
