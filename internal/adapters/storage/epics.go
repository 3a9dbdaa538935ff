package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

func takeEpic(tx *gorm.DB, id string) (EpicModel, error) {
	var model EpicModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, domain.NotFound("epic", id)
	}
	return model, err
}

// loadEpic reads one epic together with its tags
func loadEpic(tx *gorm.DB, id string) (domain.Epic, error) {
	model, err := takeEpic(tx, id)
	if err != nil {
		return domain.Epic{}, err
	}
	tags, err := loadTagNames(tx, epicTags, []string{id})
	if err != nil {
		return domain.Epic{}, err
	}
	return epicModelToDomain(model, tags[id])
}

// CreateEpic inserts an epic after checking hierarchy, agent and status rules
func (r *SQLiteRepository) CreateEpic(ctx context.Context, in domain.CreateEpicInput) (domain.Epic, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Epic{}, domain.Validation("epic", "title is required")
	}
	data, err := encodeJSONObject("epic", in.Data)
	if err != nil {
		return domain.Epic{}, err
	}

	var epic domain.Epic
	err = r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, in.ProjectID); err != nil {
			return err
		}
		statusID, err := resolveEpicStatus(tx, in.ProjectID, in.StatusID)
		if err != nil {
			return err
		}
		if in.ParentID != nil {
			if err := validateEpicParent(tx, in.ProjectID, "", *in.ParentID); err != nil {
				return err
			}
		}
		if in.AgentID != nil {
			if err := validateEpicAgent(tx, in.ProjectID, *in.AgentID); err != nil {
				return err
			}
		}

		ts := now()
		model := EpicModel{
			AgentID:     in.AgentID,
			CreatedAt:   ts,
			Data:        data,
			Description: in.Description,
			ID:          uuid.NewString(),
			ParentID:    in.ParentID,
			ProjectID:   in.ProjectID,
			StatusID:    statusID,
			Title:       title,
			UpdatedAt:   ts,
			Version:     1,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, epicTags, model.ID, &model.ProjectID, in.Tags); err != nil {
			return err
		}

		epic, err = loadEpic(tx, model.ID)
		return err
	})
	if err != nil {
		return domain.Epic{}, err
	}
	return epic, nil
}

// GetEpic retrieves an epic by id
func (r *SQLiteRepository) GetEpic(ctx context.Context, id string) (domain.Epic, error) {
	var epic domain.Epic
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		epic, err = loadEpic(tx, id)
		return err
	})
	if err != nil {
		return domain.Epic{}, err
	}
	return epic, nil
}

// ListEpics returns one page of epics, most recently updated first
func (r *SQLiteRepository) ListEpics(ctx context.Context, filter domain.EpicFilter) (domain.ListResult[domain.Epic], error) {
	page := filter.Page.Normalize()
	result := domain.ListResult[domain.Epic]{Limit: page.Limit, Offset: page.Offset}

	err := r.transact(ctx, func(tx *gorm.DB) error {
		base := func() *gorm.DB {
			return applyEpicFilter(tx.Model(&EpicModel{}), filter)
		}

		if err := base().Count(&result.Total).Error; err != nil {
			return err
		}

		var models []EpicModel
		err := base().
			Order("epics.updated_at DESC").Order("epics.id DESC").
			Limit(page.Limit).Offset(page.Offset).
			Find(&models).Error
		if err != nil {
			return err
		}

		tags, err := loadTagNames(tx, epicTags, ownerIDs(models, func(m EpicModel) string { return m.ID }))
		if err != nil {
			return err
		}
		result.Items, err = epicModelsToDomain(models, tags)
		return err
	})
	if err != nil {
		return domain.ListResult[domain.Epic]{}, err
	}
	return result, nil
}

// ListSubEpics lists the children of parentID with the same filters as ListEpics
func (r *SQLiteRepository) ListSubEpics(ctx context.Context, parentID string, filter domain.EpicFilter) (domain.ListResult[domain.Epic], error) {
	parent, err := r.GetEpic(ctx, parentID)
	if err != nil {
		return domain.ListResult[domain.Epic]{}, err
	}
	filter.ProjectID = parent.ProjectID
	filter.ParentID = &parentID
	filter.RootsOnly = false
	return r.ListEpics(ctx, filter)
}

// UpdateEpic applies patch when the stored version equals expectedVersion
func (r *SQLiteRepository) UpdateEpic(ctx context.Context, id string, patch domain.EpicPatch, expectedVersion int) (domain.Epic, error) {
	var epic domain.Epic
	err := r.transact(ctx, func(tx *gorm.DB) error {
		current, err := takeEpic(tx, id)
		if err != nil {
			return err
		}
		if err := guardVersion(tx, "epics", "epic", id, expectedVersion); err != nil {
			return err
		}

		changes := map[string]any{}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return domain.Validation("epic", "title is required")
			}
			changes["title"] = title
		}
		if patch.Description != nil {
			changes["description"] = *patch.Description
		}
		if patch.StatusID != nil {
			if *patch.StatusID == "" {
				return domain.Validation("epic", "status is required")
			}
			statusID, err := resolveEpicStatus(tx, current.ProjectID, *patch.StatusID)
			if err != nil {
				return err
			}
			changes["status_id"] = statusID
		}
		if patch.ClearParent {
			changes["parent_id"] = nil
		} else if patch.ParentID != nil {
			if err := validateEpicParent(tx, current.ProjectID, id, *patch.ParentID); err != nil {
				return err
			}
			changes["parent_id"] = *patch.ParentID
		}
		if patch.ClearAgent {
			changes["agent_id"] = nil
		} else if patch.AgentID != nil {
			if err := validateEpicAgent(tx, current.ProjectID, *patch.AgentID); err != nil {
				return err
			}
			changes["agent_id"] = *patch.AgentID
		}
		if patch.Data != nil {
			data, err := encodeJSONObject("epic", patch.Data)
			if err != nil {
				return err
			}
			changes["data"] = data
		}

		if err := updateVersioned(tx, "epics", "epic", id, expectedVersion, changes); err != nil {
			return err
		}
		if patch.Tags != nil {
			if err := replaceTags(tx, epicTags, id, &current.ProjectID, *patch.Tags); err != nil {
				return err
			}
		}

		epic, err = loadEpic(tx, id)
		return err
	})
	if err != nil {
		return domain.Epic{}, err
	}
	return epic, nil
}

// DeleteEpic removes an epic, its children and everything attached to them.
// Sessions and reviews pointing at them are detached rather than deleted.
func (r *SQLiteRepository) DeleteEpic(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeEpic(tx, id); err != nil {
			return err
		}

		var childIDs []string
		if err := tx.Model(&EpicModel{}).Where("parent_id = ?", id).Pluck("id", &childIDs).Error; err != nil {
			return err
		}
		ids := append(childIDs, id)

		steps := []struct {
			sql  string
			args []any
		}{
			{"DELETE FROM record_tags WHERE record_id IN (SELECT id FROM records WHERE epic_id IN ?)", []any{ids}},
			{"DELETE FROM records WHERE epic_id IN ?", []any{ids}},
			{"DELETE FROM epic_comments WHERE epic_id IN ?", []any{ids}},
			{"DELETE FROM epic_tags WHERE epic_id IN ?", []any{ids}},
			{"UPDATE sessions SET epic_id = NULL WHERE epic_id IN ?", []any{ids}},
			{"UPDATE reviews SET epic_id = NULL WHERE epic_id IN ?", []any{ids}},
			{"DELETE FROM epics WHERE parent_id = ?", []any{id}},
			{"DELETE FROM epics WHERE id = ?", []any{id}},
		}
		for _, step := range steps {
			if err := tx.Exec(step.sql, step.args...).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateEpicComment adds a note to an epic
func (r *SQLiteRepository) CreateEpicComment(ctx context.Context, epicID, authorName, content string) (domain.EpicComment, error) {
	if strings.TrimSpace(content) == "" {
		return domain.EpicComment{}, domain.Validation("epic comment", "content is required")
	}

	ts := now()
	model := EpicCommentModel{
		AuthorName: authorName,
		Content:    content,
		CreatedAt:  ts,
		EpicID:     epicID,
		ID:         uuid.NewString(),
		UpdatedAt:  ts,
	}
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeEpic(tx, epicID); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.EpicComment{}, err
	}
	return epicCommentModelToDomain(model), nil
}

// ListEpicComments returns an epic's comments, oldest first
func (r *SQLiteRepository) ListEpicComments(ctx context.Context, epicID string) ([]domain.EpicComment, error) {
	var models []EpicCommentModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		return tx.Where("epic_id = ?", epicID).Order("created_at").Order("id").Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	comments := make([]domain.EpicComment, len(models))
	for i, m := range models {
		comments[i] = epicCommentModelToDomain(m)
	}
	return comments, nil
}
