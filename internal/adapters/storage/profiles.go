package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

func takeProfile(tx *gorm.DB, id string) (AgentProfileModel, error) {
	var model AgentProfileModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, domain.NotFound("agent profile", id)
	}
	return model, err
}

// CreateAgentProfile inserts a profile. Temperature is stored scaled.
func (r *SQLiteRepository) CreateAgentProfile(ctx context.Context, in domain.CreateAgentProfileInput) (domain.AgentProfile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.AgentProfile{}, domain.Validation("agent profile", "name is required")
	}
	if strings.TrimSpace(in.ProviderID) == "" {
		return domain.AgentProfile{}, domain.Validation("agent profile", "provider is required")
	}
	options, err := encodeJSONObject("agent profile", in.Options)
	if err != nil {
		return domain.AgentProfile{}, err
	}

	ts := now()
	model := AgentProfileModel{
		CreatedAt:    ts,
		ID:           uuid.NewString(),
		Instructions: in.Instructions,
		MaxTokens:    in.MaxTokens,
		Name:         name,
		Options:      options,
		ProjectID:    in.ProjectID,
		ProviderID:   in.ProviderID,
		Temperature:  domain.ScaleTemperature(in.Temperature),
		UpdatedAt:    ts,
	}
	err = r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireOptionalProject(tx, in.ProjectID); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.AgentProfile{}, err
	}
	return profileModelToDomain(model)
}

// GetAgentProfile retrieves a profile by id
func (r *SQLiteRepository) GetAgentProfile(ctx context.Context, id string) (domain.AgentProfile, error) {
	var model AgentProfileModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		model, err = takeProfile(tx, id)
		return err
	})
	if err != nil {
		return domain.AgentProfile{}, err
	}
	return profileModelToDomain(model)
}

// ListAgentProfiles returns the profiles of a project, or the global ones
// when projectID is nil.
func (r *SQLiteRepository) ListAgentProfiles(ctx context.Context, projectID *string) ([]domain.AgentProfile, error) {
	var models []AgentProfileModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		q := tx.Model(&AgentProfileModel{})
		if projectID != nil {
			q = q.Where("project_id = ?", *projectID)
		} else {
			q = q.Where("project_id IS NULL")
		}
		return q.Order("name").Order("id").Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.AgentProfile, 0, len(models))
	for _, m := range models {
		profile, err := profileModelToDomain(m)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// UpdateAgentProfile applies patch to a profile. Profiles are last-writer-wins.
func (r *SQLiteRepository) UpdateAgentProfile(ctx context.Context, id string, patch domain.AgentProfilePatch) (domain.AgentProfile, error) {
	var model AgentProfileModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		current, err := takeProfile(tx, id)
		if err != nil {
			return err
		}

		changes := map[string]any{"updated_at": nextTimestamp(current.UpdatedAt)}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return domain.Validation("agent profile", "name is required")
			}
			changes["name"] = name
		}
		if patch.ProviderID != nil {
			if strings.TrimSpace(*patch.ProviderID) == "" {
				return domain.Validation("agent profile", "provider is required")
			}
			changes["provider_id"] = *patch.ProviderID
		}
		if patch.Instructions != nil {
			changes["instructions"] = *patch.Instructions
		}
		if patch.MaxTokens != nil {
			changes["max_tokens"] = *patch.MaxTokens
		}
		if patch.Temperature != nil {
			changes["temperature"] = *domain.ScaleTemperature(patch.Temperature)
		}
		if patch.Options != nil {
			options, err := encodeJSONObject("agent profile", patch.Options)
			if err != nil {
				return err
			}
			changes["options"] = options
		}

		if err := tx.Model(&AgentProfileModel{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		model, err = takeProfile(tx, id)
		return err
	})
	if err != nil {
		return domain.AgentProfile{}, err
	}
	return profileModelToDomain(model)
}

// DeleteAgentProfile removes a profile no agent references
func (r *SQLiteRepository) DeleteAgentProfile(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeProfile(tx, id); err != nil {
			return err
		}

		var agents int64
		if err := tx.Model(&AgentModel{}).Where("profile_id = ?", id).Count(&agents).Error; err != nil {
			return err
		}
		if agents > 0 {
			return domain.Conflict("agent profile", "profile %s is used by %d agents", id, agents)
		}

		if err := tx.Where("profile_id = ?", id).Delete(&ProfilePromptModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&AgentProfileModel{}).Error
	})
}

// SetProfilePrompts replaces the ordered prompt list of a profile. Prompts
// must be global or belong to the profile's project.
func (r *SQLiteRepository) SetProfilePrompts(ctx context.Context, profileID string, promptIDs []string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		profile, err := takeProfile(tx, profileID)
		if err != nil {
			return err
		}

		var prompts []PromptModel
		if len(promptIDs) > 0 {
			if err := tx.Select("id", "project_id").Where("id IN ?", promptIDs).Find(&prompts).Error; err != nil {
				return err
			}
		}
		byID := make(map[string]PromptModel, len(prompts))
		for _, p := range prompts {
			byID[p.ID] = p
		}

		seen := make(map[string]bool, len(promptIDs))
		for _, id := range promptIDs {
			p, ok := byID[id]
			if !ok {
				return domain.Validation("agent profile", "prompt %s does not exist", id)
			}
			if seen[id] {
				return domain.Validation("agent profile", "prompt %s is listed twice", id)
			}
			seen[id] = true
			if p.ProjectID != nil && (profile.ProjectID == nil || *p.ProjectID != *profile.ProjectID) {
				return domain.Validation("agent profile", "prompt %s belongs to another project", id)
			}
		}

		if err := tx.Where("profile_id = ?", profileID).Delete(&ProfilePromptModel{}).Error; err != nil {
			return err
		}
		if len(promptIDs) == 0 {
			return nil
		}

		ts := now()
		links := make([]ProfilePromptModel, len(promptIDs))
		for i, id := range promptIDs {
			links[i] = ProfilePromptModel{CreatedAt: ts, Position: i, ProfileID: profileID, PromptID: id}
		}
		return tx.Create(&links).Error
	})
}

// ListProfilePrompts returns a profile's prompts in their assigned order
func (r *SQLiteRepository) ListProfilePrompts(ctx context.Context, profileID string) ([]domain.Prompt, error) {
	var prompts []domain.Prompt
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeProfile(tx, profileID); err != nil {
			return err
		}

		var models []PromptModel
		err := tx.Model(&PromptModel{}).
			Joins("JOIN profile_prompts pp ON pp.prompt_id = prompts.id").
			Where("pp.profile_id = ?", profileID).
			Order("pp.position").
			Find(&models).Error
		if err != nil {
			return err
		}

		tags, err := loadTagNames(tx, promptTags, ownerIDs(models, func(m PromptModel) string { return m.ID }))
		if err != nil {
			return err
		}
		prompts = make([]domain.Prompt, len(models))
		for i, m := range models {
			prompts[i] = promptModelToDomain(m, tags[m.ID])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prompts, nil
}
