package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

// requireProject fails with NotFound unless the project exists
func requireProject(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&ProjectModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.NotFound("project", id)
	}
	return nil
}

// requireOptionalProject is requireProject for nullable scopes
func requireOptionalProject(tx *gorm.DB, id *string) error {
	if id == nil {
		return nil
	}
	return requireProject(tx, *id)
}

func validateProjectInput(name, rootPath string) error {
	if name == "" {
		return domain.Validation("project", "name is required")
	}
	if rootPath == "" {
		return domain.Validation("project", "root path is required")
	}
	return nil
}

// ensureRootPathFree reports a Conflict when another project uses rootPath
func ensureRootPathFree(tx *gorm.DB, rootPath, exceptID string) error {
	var count int64
	q := tx.Model(&ProjectModel{}).Where("root_path = ?", rootPath)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.Conflict("project", "root path %s is already used by another project", rootPath)
	}
	return nil
}

// CreateProject inserts a new project
func (r *SQLiteRepository) CreateProject(ctx context.Context, in domain.CreateProjectInput) (domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	rootPath := strings.TrimSpace(in.RootPath)
	if err := validateProjectInput(name, rootPath); err != nil {
		return domain.Project{}, err
	}

	ts := now()
	model := ProjectModel{
		CreatedAt:   ts,
		Description: in.Description,
		ID:          uuid.NewString(),
		IsTemplate:  in.IsTemplate,
		Name:        name,
		RootPath:    rootPath,
		UpdatedAt:   ts,
	}

	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := ensureRootPathFree(tx, rootPath, ""); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Project{}, err
	}
	return projectModelToDomain(model), nil
}

// GetProject retrieves a project by id
func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var model ProjectModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).Take(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("project", id)
		}
		return err
	})
	if err != nil {
		return domain.Project{}, err
	}
	return projectModelToDomain(model), nil
}

// ListProjects returns one page of projects ordered by name
func (r *SQLiteRepository) ListProjects(ctx context.Context, filter domain.ProjectFilter) (domain.ListResult[domain.Project], error) {
	page := filter.Page.Normalize()
	result := domain.ListResult[domain.Project]{Limit: page.Limit, Offset: page.Offset}

	err := r.transact(ctx, func(tx *gorm.DB) error {
		base := func() *gorm.DB {
			q := tx.Model(&ProjectModel{})
			if filter.IsTemplate != nil {
				q = q.Where("is_template = ?", *filter.IsTemplate)
			}
			return q
		}

		if err := base().Count(&result.Total).Error; err != nil {
			return err
		}

		var models []ProjectModel
		if err := base().Order("name").Order("id").Limit(page.Limit).Offset(page.Offset).Find(&models).Error; err != nil {
			return err
		}

		result.Items = make([]domain.Project, len(models))
		for i, m := range models {
			result.Items[i] = projectModelToDomain(m)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[domain.Project]{}, err
	}
	return result, nil
}

// UpdateProject applies patch to a project. Projects are last-writer-wins.
func (r *SQLiteRepository) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (domain.Project, error) {
	var model ProjectModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("project", id)
			}
			return err
		}

		changes := map[string]any{"updated_at": nextTimestamp(model.UpdatedAt)}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return domain.Validation("project", "name is required")
			}
			changes["name"] = name
		}
		if patch.Description != nil {
			changes["description"] = *patch.Description
		}
		if patch.IsTemplate != nil {
			changes["is_template"] = *patch.IsTemplate
		}
		if patch.RootPath != nil {
			rootPath := strings.TrimSpace(*patch.RootPath)
			if rootPath == "" {
				return domain.Validation("project", "root path is required")
			}
			if err := ensureRootPathFree(tx, rootPath, id); err != nil {
				return err
			}
			changes["root_path"] = rootPath
		}

		if err := tx.Model(&ProjectModel{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Take(&model).Error
	})
	if err != nil {
		return domain.Project{}, err
	}
	return projectModelToDomain(model), nil
}
