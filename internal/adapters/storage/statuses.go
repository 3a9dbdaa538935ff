package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

func takeStatus(tx *gorm.DB, id string) (StatusModel, error) {
	var model StatusModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, domain.NotFound("status", id)
	}
	return model, err
}

// CreateStatus adds a workflow stage to a project. A nil Position appends it.
func (r *SQLiteRepository) CreateStatus(ctx context.Context, in domain.CreateStatusInput) (domain.Status, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return domain.Status{}, domain.Validation("status", "label is required")
	}

	var model StatusModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, in.ProjectID); err != nil {
			return err
		}

		position := 0
		if in.Position != nil {
			position = *in.Position
		} else {
			var maxPosition int
			if err := tx.Model(&StatusModel{}).Where("project_id = ?", in.ProjectID).
				Select("COALESCE(MAX(position), -1)").Scan(&maxPosition).Error; err != nil {
				return err
			}
			position = maxPosition + 1
		}

		ts := now()
		model = StatusModel{
			Color:     in.Color,
			CreatedAt: ts,
			ID:        uuid.NewString(),
			Label:     label,
			McpHidden: in.McpHidden,
			Position:  position,
			ProjectID: in.ProjectID,
			UpdatedAt: ts,
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Status{}, err
	}
	return statusModelToDomain(model), nil
}

// GetStatus retrieves a status by id
func (r *SQLiteRepository) GetStatus(ctx context.Context, id string) (domain.Status, error) {
	var model StatusModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		model, err = takeStatus(tx, id)
		return err
	})
	if err != nil {
		return domain.Status{}, err
	}
	return statusModelToDomain(model), nil
}

// ListStatuses returns the project's statuses in workflow order
func (r *SQLiteRepository) ListStatuses(ctx context.Context, projectID string) ([]domain.Status, error) {
	var models []StatusModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		return tx.Where("project_id = ?", projectID).
			Order("position").Order("created_at").Order("id").
			Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.Status, len(models))
	for i, m := range models {
		statuses[i] = statusModelToDomain(m)
	}
	return statuses, nil
}

// UpdateStatus applies patch to a status. Statuses are last-writer-wins.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, patch domain.StatusPatch) (domain.Status, error) {
	var model StatusModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		current, err := takeStatus(tx, id)
		if err != nil {
			return err
		}

		changes := map[string]any{"updated_at": nextTimestamp(current.UpdatedAt)}
		if patch.Label != nil {
			label := strings.TrimSpace(*patch.Label)
			if label == "" {
				return domain.Validation("status", "label is required")
			}
			changes["label"] = label
		}
		if patch.Color != nil {
			changes["color"] = *patch.Color
		}
		if patch.McpHidden != nil {
			changes["mcp_hidden"] = *patch.McpHidden
		}
		if patch.Position != nil {
			changes["position"] = *patch.Position
		}

		if err := tx.Model(&StatusModel{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		model, err = takeStatus(tx, id)
		return err
	})
	if err != nil {
		return domain.Status{}, err
	}
	return statusModelToDomain(model), nil
}

// DeleteStatus removes a status no epic uses
func (r *SQLiteRepository) DeleteStatus(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeStatus(tx, id); err != nil {
			return err
		}

		var inUse int64
		if err := tx.Model(&EpicModel{}).Where("status_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return domain.Conflict("status", "status %s is used by %d epics", id, inUse)
		}

		return tx.Where("id = ?", id).Delete(&StatusModel{}).Error
	})
}

// ReorderStatuses assigns positions 0..n-1 following orderedIDs. Every id
// must be a distinct status of the project.
func (r *SQLiteRepository) ReorderStatuses(ctx context.Context, projectID string, orderedIDs []string) ([]domain.Status, error) {
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, projectID); err != nil {
			return err
		}

		var owned []string
		if err := tx.Model(&StatusModel{}).Where("project_id = ?", projectID).Pluck("id", &owned).Error; err != nil {
			return err
		}
		ownedSet := make(map[string]bool, len(owned))
		for _, id := range owned {
			ownedSet[id] = true
		}

		seen := make(map[string]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if !ownedSet[id] {
				return domain.Validation("status", "status %s does not belong to project %s", id, projectID)
			}
			if seen[id] {
				return domain.Validation("status", "status %s is listed twice", id)
			}
			seen[id] = true
		}

		ts := now()
		for position, id := range orderedIDs {
			if err := tx.Model(&StatusModel{}).Where("id = ?", id).
				Updates(map[string]any{"position": position, "updated_at": ts}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.ListStatuses(ctx, projectID)
}
