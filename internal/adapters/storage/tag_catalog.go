package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"devboard/internal/domain"
)

func takeTag(tx *gorm.DB, id string) (TagModel, error) {
	var model TagModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, domain.NotFound("tag", id)
	}
	return model, err
}

// CreateTag creates a tag, or returns the one the resolver would reuse for
// the same name and scope.
func (r *SQLiteRepository) CreateTag(ctx context.Context, projectID *string, name string) (domain.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Tag{}, domain.Validation("tag", "name is required")
	}

	var model TagModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireOptionalProject(tx, projectID); err != nil {
			return err
		}
		ids, err := resolveTagIDs(tx, projectID, []string{name})
		if err != nil {
			return err
		}
		model, err = takeTag(tx, ids[0])
		return err
	})
	if err != nil {
		return domain.Tag{}, err
	}
	return tagModelToDomain(model), nil
}

// GetTag retrieves a tag by id
func (r *SQLiteRepository) GetTag(ctx context.Context, id string) (domain.Tag, error) {
	var model TagModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		model, err = takeTag(tx, id)
		return err
	})
	if err != nil {
		return domain.Tag{}, err
	}
	return tagModelToDomain(model), nil
}

// ListTags returns the tags visible from a project (its own plus global
// ones), or only the global tags when projectID is nil.
func (r *SQLiteRepository) ListTags(ctx context.Context, projectID *string) ([]domain.Tag, error) {
	var models []TagModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		q := tx.Model(&TagModel{})
		if projectID != nil {
			q = q.Where("(project_id = ? OR project_id IS NULL)", *projectID)
		} else {
			q = q.Where("project_id IS NULL")
		}
		return q.Order("name").Order("project_id IS NULL").Order("id").Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	tags := make([]domain.Tag, len(models))
	for i, m := range models {
		tags[i] = tagModelToDomain(m)
	}
	return tags, nil
}

// UpdateTag renames a tag everywhere it is attached
func (r *SQLiteRepository) UpdateTag(ctx context.Context, id, name string) (domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tag{}, domain.Validation("tag", "name is required")
	}

	var model TagModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		current, err := takeTag(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&TagModel{}).Where("id = ?", id).Updates(map[string]any{
			"name":       name,
			"updated_at": nextTimestamp(current.UpdatedAt),
		}).Error; err != nil {
			return err
		}
		model, err = takeTag(tx, id)
		return err
	})
	if err != nil {
		return domain.Tag{}, err
	}
	return tagModelToDomain(model), nil
}

// DeleteTag detaches a tag from every entity and removes it
func (r *SQLiteRepository) DeleteTag(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeTag(tx, id); err != nil {
			return err
		}
		for _, j := range []tagJunction{documentTags, epicTags, promptTags, recordTags} {
			if err := tx.Exec("DELETE FROM "+j.table+" WHERE tag_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&TagModel{}).Error
	})
}

// GetTagsForEntities batch-loads the tag names of many entities of one kind
func (r *SQLiteRepository) GetTagsForEntities(ctx context.Context, kind domain.TaggedKind, ids []string) (map[string][]string, error) {
	j, err := junctionFor(kind)
	if err != nil {
		return nil, err
	}

	var tags map[string][]string
	err = r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		tags, err = loadTagNames(tx, j, uniqueIDs(ids))
		return err
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
