package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

// Watcher defaults applied when a field is left zero
const (
	defaultPollIntervalMs = 5000
	defaultViewportLines  = 50
	defaultWatcherScope   = "all"
)

func watcherToModel(w domain.Watcher) (WatcherModel, error) {
	if strings.TrimSpace(w.Name) == "" {
		return WatcherModel{}, domain.Validation("watcher", "name is required")
	}
	if strings.TrimSpace(w.TriggerEvent) == "" {
		return WatcherModel{}, domain.Validation("watcher", "trigger event is required")
	}
	condition, err := encodeJSONObject("watcher", w.Condition)
	if err != nil {
		return WatcherModel{}, err
	}
	if w.PollIntervalMs <= 0 {
		w.PollIntervalMs = defaultPollIntervalMs
	}
	if w.ViewportLines <= 0 {
		w.ViewportLines = defaultViewportLines
	}
	if w.Scope == "" {
		w.Scope = defaultWatcherScope
	}
	return WatcherModel{
		Condition:        condition,
		Description:      w.Description,
		Enabled:          w.Enabled,
		ID:               w.ID,
		IdleAfterSeconds: w.IdleAfterSeconds,
		Name:             strings.TrimSpace(w.Name),
		PollIntervalMs:   w.PollIntervalMs,
		ProjectID:        w.ProjectID,
		Scope:            w.Scope,
		ScopeFilter:      w.ScopeFilter,
		TriggerEvent:     w.TriggerEvent,
		ViewportLines:    w.ViewportLines,
	}, nil
}

func subscriberToModel(s domain.Subscriber) (SubscriberModel, error) {
	if strings.TrimSpace(s.Name) == "" {
		return SubscriberModel{}, domain.Validation("subscriber", "name is required")
	}
	if strings.TrimSpace(s.EventName) == "" {
		return SubscriberModel{}, domain.Validation("subscriber", "event name is required")
	}
	if strings.TrimSpace(s.ActionType) == "" {
		return SubscriberModel{}, domain.Validation("subscriber", "action type is required")
	}
	filter, err := encodeJSONObject("subscriber", s.EventFilter)
	if err != nil {
		return SubscriberModel{}, err
	}
	inputs, err := encodeJSONObject("subscriber", s.ActionInputs)
	if err != nil {
		return SubscriberModel{}, err
	}
	return SubscriberModel{
		ActionInputs: inputs,
		ActionType:   s.ActionType,
		Description:  s.Description,
		Enabled:      s.Enabled,
		EventFilter:  filter,
		EventName:    s.EventName,
		GroupName:    s.GroupName,
		ID:           s.ID,
		Name:         strings.TrimSpace(s.Name),
		Position:     s.Position,
		Priority:     s.Priority,
		ProjectID:    s.ProjectID,
	}, nil
}

// CreateWatcher stores a new watcher; the ID of w is ignored
func (r *SQLiteRepository) CreateWatcher(ctx context.Context, w domain.Watcher) (domain.Watcher, error) {
	model, err := watcherToModel(w)
	if err != nil {
		return domain.Watcher{}, err
	}
	ts := now()
	model.ID = uuid.NewString()
	model.CreatedAt = ts
	model.UpdatedAt = ts

	err = r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, model.ProjectID); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Watcher{}, err
	}
	return watcherModelToDomain(model)
}

// GetWatcher retrieves a watcher by id
func (r *SQLiteRepository) GetWatcher(ctx context.Context, id string) (domain.Watcher, error) {
	var model WatcherModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).Take(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("watcher", id)
		}
		return err
	})
	if err != nil {
		return domain.Watcher{}, err
	}
	return watcherModelToDomain(model)
}

// ListWatchers returns the watchers of a project ordered by name
func (r *SQLiteRepository) ListWatchers(ctx context.Context, projectID string) ([]domain.Watcher, error) {
	var models []WatcherModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		return tx.Where("project_id = ?", projectID).Order("name").Order("id").Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	watchers := make([]domain.Watcher, 0, len(models))
	for _, m := range models {
		w, err := watcherModelToDomain(m)
		if err != nil {
			return nil, err
		}
		watchers = append(watchers, w)
	}
	return watchers, nil
}

// UpdateWatcher overwrites every mutable field of a watcher
func (r *SQLiteRepository) UpdateWatcher(ctx context.Context, w domain.Watcher) (domain.Watcher, error) {
	model, err := watcherToModel(w)
	if err != nil {
		return domain.Watcher{}, err
	}

	err = r.transact(ctx, func(tx *gorm.DB) error {
		var current WatcherModel
		if err := tx.Where("id = ?", w.ID).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("watcher", w.ID)
			}
			return err
		}
		model.CreatedAt = current.CreatedAt
		model.ProjectID = current.ProjectID
		model.UpdatedAt = nextTimestamp(current.UpdatedAt)
		return tx.Save(&model).Error
	})
	if err != nil {
		return domain.Watcher{}, err
	}
	return watcherModelToDomain(model)
}

// DeleteWatcher removes a watcher
func (r *SQLiteRepository) DeleteWatcher(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&WatcherModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("watcher", id)
		}
		return nil
	})
}

// CreateSubscriber stores a new subscriber; the ID of s is ignored
func (r *SQLiteRepository) CreateSubscriber(ctx context.Context, s domain.Subscriber) (domain.Subscriber, error) {
	model, err := subscriberToModel(s)
	if err != nil {
		return domain.Subscriber{}, err
	}
	ts := now()
	model.ID = uuid.NewString()
	model.CreatedAt = ts
	model.UpdatedAt = ts

	err = r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, model.ProjectID); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Subscriber{}, err
	}
	return subscriberModelToDomain(model)
}

// GetSubscriber retrieves a subscriber by id
func (r *SQLiteRepository) GetSubscriber(ctx context.Context, id string) (domain.Subscriber, error) {
	var model SubscriberModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).Take(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("subscriber", id)
		}
		return err
	})
	if err != nil {
		return domain.Subscriber{}, err
	}
	return subscriberModelToDomain(model)
}

// ListSubscribers returns the subscribers of a project in dispatch order
func (r *SQLiteRepository) ListSubscribers(ctx context.Context, projectID string) ([]domain.Subscriber, error) {
	var models []SubscriberModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		return tx.Where("project_id = ?", projectID).
			Order("priority DESC").Order("position").Order("id").
			Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	subscribers := make([]domain.Subscriber, 0, len(models))
	for _, m := range models {
		s, err := subscriberModelToDomain(m)
		if err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, nil
}

// UpdateSubscriber overwrites every mutable field of a subscriber
func (r *SQLiteRepository) UpdateSubscriber(ctx context.Context, s domain.Subscriber) (domain.Subscriber, error) {
	model, err := subscriberToModel(s)
	if err != nil {
		return domain.Subscriber{}, err
	}

	err = r.transact(ctx, func(tx *gorm.DB) error {
		var current SubscriberModel
		if err := tx.Where("id = ?", s.ID).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("subscriber", s.ID)
			}
			return err
		}
		model.CreatedAt = current.CreatedAt
		model.ProjectID = current.ProjectID
		model.UpdatedAt = nextTimestamp(current.UpdatedAt)
		return tx.Save(&model).Error
	})
	if err != nil {
		return domain.Subscriber{}, err
	}
	return subscriberModelToDomain(model)
}

// DeleteSubscriber removes a subscriber
func (r *SQLiteRepository) DeleteSubscriber(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&SubscriberModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("subscriber", id)
		}
		return nil
	})
}
