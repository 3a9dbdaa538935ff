package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

func loadPrompt(tx *gorm.DB, id string) (domain.Prompt, error) {
	var model PromptModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Prompt{}, domain.NotFound("prompt", id)
	}
	if err != nil {
		return domain.Prompt{}, err
	}
	tags, err := loadTagNames(tx, promptTags, []string{id})
	if err != nil {
		return domain.Prompt{}, err
	}
	return promptModelToDomain(model, tags[id]), nil
}

// CreatePrompt inserts a prompt. A nil ProjectID makes it global.
func (r *SQLiteRepository) CreatePrompt(ctx context.Context, in domain.CreatePromptInput) (domain.Prompt, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Prompt{}, domain.Validation("prompt", "title is required")
	}

	var prompt domain.Prompt
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireOptionalProject(tx, in.ProjectID); err != nil {
			return err
		}

		ts := now()
		model := PromptModel{
			Content:   in.Content,
			CreatedAt: ts,
			ID:        uuid.NewString(),
			ProjectID: in.ProjectID,
			Title:     title,
			UpdatedAt: ts,
			Version:   1,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, promptTags, model.ID, model.ProjectID, in.Tags); err != nil {
			return err
		}

		var err error
		prompt, err = loadPrompt(tx, model.ID)
		return err
	})
	if err != nil {
		return domain.Prompt{}, err
	}
	return prompt, nil
}

// GetPrompt retrieves a prompt by id
func (r *SQLiteRepository) GetPrompt(ctx context.Context, id string) (domain.Prompt, error) {
	var prompt domain.Prompt
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		prompt, err = loadPrompt(tx, id)
		return err
	})
	if err != nil {
		return domain.Prompt{}, err
	}
	return prompt, nil
}

// ListPrompts returns one page of prompts ordered by title
func (r *SQLiteRepository) ListPrompts(ctx context.Context, filter domain.PromptFilter) (domain.ListResult[domain.Prompt], error) {
	page := filter.Page.Normalize()
	result := domain.ListResult[domain.Prompt]{Limit: page.Limit, Offset: page.Offset}

	err := r.transact(ctx, func(tx *gorm.DB) error {
		base := func() *gorm.DB {
			q := tx.Model(&PromptModel{})
			if filter.ProjectID != nil {
				q = q.Where("prompts.project_id = ?", *filter.ProjectID)
			} else {
				q = q.Where("prompts.project_id IS NULL")
			}
			if query := strings.TrimSpace(filter.Query); query != "" {
				like := "%" + query + "%"
				q = q.Where("(prompts.title LIKE ? OR prompts.content LIKE ?)", like, like)
			}
			return withAllTags(q, promptTags, "prompts.id", filter.Tags)
		}

		if err := base().Count(&result.Total).Error; err != nil {
			return err
		}

		var models []PromptModel
		if err := base().Order("prompts.title").Order("prompts.id").
			Limit(page.Limit).Offset(page.Offset).Find(&models).Error; err != nil {
			return err
		}

		tags, err := loadTagNames(tx, promptTags, ownerIDs(models, func(m PromptModel) string { return m.ID }))
		if err != nil {
			return err
		}
		result.Items = make([]domain.Prompt, len(models))
		for i, m := range models {
			result.Items[i] = promptModelToDomain(m, tags[m.ID])
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[domain.Prompt]{}, err
	}
	return result, nil
}

// UpdatePrompt applies patch when the stored version equals expectedVersion
func (r *SQLiteRepository) UpdatePrompt(ctx context.Context, id string, patch domain.PromptPatch, expectedVersion int) (domain.Prompt, error) {
	var prompt domain.Prompt
	err := r.transact(ctx, func(tx *gorm.DB) error {
		current, err := loadPrompt(tx, id)
		if err != nil {
			return err
		}
		if err := guardVersion(tx, "prompts", "prompt", id, expectedVersion); err != nil {
			return err
		}

		changes := map[string]any{}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return domain.Validation("prompt", "title is required")
			}
			changes["title"] = title
		}
		if patch.Content != nil {
			changes["content"] = *patch.Content
		}

		if err := updateVersioned(tx, "prompts", "prompt", id, expectedVersion, changes); err != nil {
			return err
		}
		if patch.Tags != nil {
			if err := replaceTags(tx, promptTags, id, current.ProjectID, *patch.Tags); err != nil {
				return err
			}
		}

		prompt, err = loadPrompt(tx, id)
		return err
	})
	if err != nil {
		return domain.Prompt{}, err
	}
	return prompt, nil
}

// DeletePrompt removes a prompt, its tags and its profile links
func (r *SQLiteRepository) DeletePrompt(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := loadPrompt(tx, id); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM prompt_tags WHERE prompt_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", id).Delete(&ProfilePromptModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&PromptModel{}).Error
	})
}
