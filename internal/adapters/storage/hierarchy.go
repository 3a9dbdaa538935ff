package storage

import (
	"errors"

	"gorm.io/gorm"

	"devboard/internal/domain"
)

// validateEpicParent checks that parentID may become the parent of epicID.
// epicID is empty when the epic is being created.
func validateEpicParent(tx *gorm.DB, projectID, epicID, parentID string) error {
	if epicID != "" && parentID == epicID {
		return domain.Validation("epic", "epic %s cannot be its own parent", epicID)
	}

	var parent EpicModel
	err := tx.Select("id", "project_id", "parent_id").Where("id = ?", parentID).Take(&parent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound("epic", parentID)
	}
	if err != nil {
		return err
	}

	if parent.ProjectID != projectID {
		return domain.Validation("epic", "parent %s belongs to another project", parentID)
	}

	// With at most two levels, a descendant is always a direct child
	if epicID != "" && parent.ParentID != nil && *parent.ParentID == epicID {
		return domain.Validation("epic", "epic %s cannot be moved under its own child %s", epicID, parentID)
	}

	if parent.ParentID != nil {
		return domain.Validation("epic", "parent %s is already a child epic; epics nest one level deep", parentID)
	}

	if epicID != "" {
		var children int64
		if err := tx.Model(&EpicModel{}).Where("parent_id = ?", epicID).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return domain.Validation("epic", "epic %s has children and cannot be given a parent", epicID)
		}
	}

	return nil
}

// validateEpicAgent checks that agentID is an agent of projectID
func validateEpicAgent(tx *gorm.DB, projectID, agentID string) error {
	var agent AgentModel
	err := tx.Select("id", "project_id").Where("id = ?", agentID).Take(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Validation("epic", "agent %s does not exist", agentID)
	}
	if err != nil {
		return err
	}
	if agent.ProjectID != projectID {
		return domain.Validation("epic", "agent %s belongs to another project", agentID)
	}
	return nil
}

// resolveEpicStatus returns statusID when it belongs to projectID, or the
// project's first status by position when statusID is empty.
func resolveEpicStatus(tx *gorm.DB, projectID, statusID string) (string, error) {
	var status StatusModel
	if statusID == "" {
		err := tx.Select("id").Where("project_id = ?", projectID).
			Order("position").Order("created_at").Take(&status).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.Validation("epic", "project %s has no statuses", projectID)
		}
		return status.ID, err
	}

	err := tx.Select("id", "project_id").Where("id = ?", statusID).Take(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.Validation("epic", "status %s does not exist", statusID)
	}
	if err != nil {
		return "", err
	}
	if status.ProjectID != projectID {
		return "", domain.Validation("epic", "status %s belongs to another project", statusID)
	}
	return status.ID, nil
}
