package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

func takeAgent(tx *gorm.DB, id string) (AgentModel, error) {
	var model AgentModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, domain.NotFound("agent", id)
	}
	return model, err
}

// validateAgentProfile checks that profileID is a profile of projectID
func validateAgentProfile(tx *gorm.DB, projectID, profileID string) error {
	var profile AgentProfileModel
	err := tx.Select("id", "project_id").Where("id = ?", profileID).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Validation("agent", "profile %s does not exist", profileID)
	}
	if err != nil {
		return err
	}
	if profile.ProjectID == nil || *profile.ProjectID != projectID {
		return domain.Validation("agent", "profile %s belongs to another project", profileID)
	}
	return nil
}

// CreateAgent inserts an agent bound to a profile of the same project
func (r *SQLiteRepository) CreateAgent(ctx context.Context, in domain.CreateAgentInput) (domain.Agent, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Agent{}, domain.Validation("agent", "name is required")
	}

	ts := now()
	model := AgentModel{
		CreatedAt:   ts,
		Description: in.Description,
		ID:          uuid.NewString(),
		Name:        name,
		ProfileID:   in.ProfileID,
		ProjectID:   in.ProjectID,
		UpdatedAt:   ts,
	}
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, in.ProjectID); err != nil {
			return err
		}
		if err := validateAgentProfile(tx, in.ProjectID, in.ProfileID); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Agent{}, err
	}
	return agentModelToDomain(model), nil
}

// GetAgent retrieves an agent by id
func (r *SQLiteRepository) GetAgent(ctx context.Context, id string) (domain.Agent, error) {
	var model AgentModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		model, err = takeAgent(tx, id)
		return err
	})
	if err != nil {
		return domain.Agent{}, err
	}
	return agentModelToDomain(model), nil
}

// ListAgents returns the agents of a project ordered by name
func (r *SQLiteRepository) ListAgents(ctx context.Context, projectID string) ([]domain.Agent, error) {
	var models []AgentModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		return tx.Where("project_id = ?", projectID).Order("name").Order("id").Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	agents := make([]domain.Agent, len(models))
	for i, m := range models {
		agents[i] = agentModelToDomain(m)
	}
	return agents, nil
}

// UpdateAgent applies patch to an agent. Agents are last-writer-wins.
func (r *SQLiteRepository) UpdateAgent(ctx context.Context, id string, patch domain.AgentPatch) (domain.Agent, error) {
	var model AgentModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		current, err := takeAgent(tx, id)
		if err != nil {
			return err
		}

		changes := map[string]any{"updated_at": nextTimestamp(current.UpdatedAt)}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return domain.Validation("agent", "name is required")
			}
			changes["name"] = name
		}
		if patch.Description != nil {
			changes["description"] = *patch.Description
		}
		if patch.ProfileID != nil {
			if err := validateAgentProfile(tx, current.ProjectID, *patch.ProfileID); err != nil {
				return err
			}
			changes["profile_id"] = *patch.ProfileID
		}

		if err := tx.Model(&AgentModel{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		model, err = takeAgent(tx, id)
		return err
	})
	if err != nil {
		return domain.Agent{}, err
	}
	return agentModelToDomain(model), nil
}

// DeleteAgent removes an agent without running sessions. Epics assigned to
// it are unassigned and its stopped sessions go with it.
func (r *SQLiteRepository) DeleteAgent(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeAgent(tx, id); err != nil {
			return err
		}

		var running int64
		if err := tx.Model(&SessionModel{}).
			Where("agent_id = ? AND status = ?", id, domain.SessionStatusRunning).
			Count(&running).Error; err != nil {
			return err
		}
		if running > 0 {
			return domain.Conflict("agent", "agent %s has %d running sessions", id, running)
		}

		steps := []string{
			"UPDATE epics SET agent_id = NULL WHERE agent_id = ?",
			"DELETE FROM session_transcripts WHERE session_id IN (SELECT id FROM sessions WHERE agent_id = ?)",
			"DELETE FROM sessions WHERE agent_id = ?",
			"DELETE FROM review_comment_targets WHERE agent_id = ?",
			"DELETE FROM chat_message_targets WHERE agent_id = ?",
			"DELETE FROM chat_invites WHERE agent_id = ?",
			"UPDATE chat_activities SET agent_id = NULL WHERE agent_id = ?",
			"DELETE FROM agents WHERE id = ?",
		}
		for _, stmt := range steps {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
