package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

func takeGuest(tx *gorm.DB, query string, arg string) (GuestModel, error) {
	var model GuestModel
	err := tx.Where(query, arg).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, domain.NotFound("guest", arg)
	}
	return model, err
}

// RegisterGuest records an externally started agent. Names are unique per
// project regardless of case; tmux session ids are unique everywhere.
func (r *SQLiteRepository) RegisterGuest(ctx context.Context, in domain.RegisterGuestInput) (domain.Guest, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Guest{}, domain.Validation("guest", "name is required")
	}
	tmuxID := strings.TrimSpace(in.TmuxSessionID)
	if tmuxID == "" {
		return domain.Guest{}, domain.Validation("guest", "tmux session id is required")
	}

	ts := now()
	model := GuestModel{
		CreatedAt:     ts,
		ID:            uuid.NewString(),
		LastSeenAt:    ts,
		Name:          name,
		ProjectID:     in.ProjectID,
		TmuxSessionID: tmuxID,
	}
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, in.ProjectID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&GuestModel{}).
			Where("project_id = ? AND lower(name) = lower(?)", in.ProjectID, name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.Conflict("guest", "a guest named %q already exists in the project", name)
		}

		if err := tx.Model(&GuestModel{}).Where("tmux_session_id = ?", tmuxID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.Conflict("guest", "tmux session %s is already registered", tmuxID)
		}

		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Guest{}, err
	}
	return guestModelToDomain(model), nil
}

// GetGuest retrieves a guest by id
func (r *SQLiteRepository) GetGuest(ctx context.Context, id string) (domain.Guest, error) {
	var model GuestModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		model, err = takeGuest(tx, "id = ?", id)
		return err
	})
	if err != nil {
		return domain.Guest{}, err
	}
	return guestModelToDomain(model), nil
}

// GetGuestByTmuxSession retrieves the guest registered for a tmux session
func (r *SQLiteRepository) GetGuestByTmuxSession(ctx context.Context, tmuxSessionID string) (domain.Guest, error) {
	var model GuestModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		model, err = takeGuest(tx, "tmux_session_id = ?", tmuxSessionID)
		return err
	})
	if err != nil {
		return domain.Guest{}, err
	}
	return guestModelToDomain(model), nil
}

// ListGuests returns the guests of a project ordered by name
func (r *SQLiteRepository) ListGuests(ctx context.Context, projectID string) ([]domain.Guest, error) {
	var models []GuestModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		return tx.Where("project_id = ?", projectID).Order("lower(name)").Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	guests := make([]domain.Guest, len(models))
	for i, m := range models {
		guests[i] = guestModelToDomain(m)
	}
	return guests, nil
}

// TouchGuest moves a guest's last-seen time forward
func (r *SQLiteRepository) TouchGuest(ctx context.Context, id string) (domain.Guest, error) {
	var model GuestModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		current, err := takeGuest(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if err := tx.Model(&GuestModel{}).Where("id = ?", id).
			Update("last_seen_at", nextTimestamp(current.LastSeenAt)).Error; err != nil {
			return err
		}
		model, err = takeGuest(tx, "id = ?", id)
		return err
	})
	if err != nil {
		return domain.Guest{}, err
	}
	return guestModelToDomain(model), nil
}

// DeleteGuest removes a guest registration
func (r *SQLiteRepository) DeleteGuest(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&GuestModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("guest", id)
		}
		return nil
	})
}
