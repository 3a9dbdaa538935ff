package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

func loadRecord(tx *gorm.DB, id string) (domain.Record, error) {
	var model RecordModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Record{}, domain.NotFound("record", id)
	}
	if err != nil {
		return domain.Record{}, err
	}
	tags, err := loadTagNames(tx, recordTags, []string{id})
	if err != nil {
		return domain.Record{}, err
	}
	return recordModelToDomain(model, tags[id])
}

// recordProject returns the project of the epic owning a record; records
// resolve tag scope through it.
func recordProject(tx *gorm.DB, epicID string) (string, error) {
	epic, err := takeEpic(tx, epicID)
	if err != nil {
		return "", err
	}
	return epic.ProjectID, nil
}

// CreateRecord attaches a typed JSON record to an epic
func (r *SQLiteRepository) CreateRecord(ctx context.Context, in domain.CreateRecordInput) (domain.Record, error) {
	recordType := strings.TrimSpace(in.Type)
	if recordType == "" {
		return domain.Record{}, domain.Validation("record", "type is required")
	}
	payload := in.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := encodeJSONObject("record", payload)
	if err != nil {
		return domain.Record{}, err
	}

	var record domain.Record
	err = r.transact(ctx, func(tx *gorm.DB) error {
		projectID, err := recordProject(tx, in.EpicID)
		if err != nil {
			return err
		}

		ts := now()
		model := RecordModel{
			CreatedAt: ts,
			Data:      data,
			EpicID:    in.EpicID,
			ID:        uuid.NewString(),
			Type:      recordType,
			UpdatedAt: ts,
			Version:   1,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, recordTags, model.ID, &projectID, in.Tags); err != nil {
			return err
		}

		record, err = loadRecord(tx, model.ID)
		return err
	})
	if err != nil {
		return domain.Record{}, err
	}
	return record, nil
}

// GetRecord retrieves a record by id
func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (domain.Record, error) {
	var record domain.Record
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		record, err = loadRecord(tx, id)
		return err
	})
	if err != nil {
		return domain.Record{}, err
	}
	return record, nil
}

// ListRecords returns the records of an epic, oldest first
func (r *SQLiteRepository) ListRecords(ctx context.Context, epicID string) ([]domain.Record, error) {
	var records []domain.Record
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var models []RecordModel
		if err := tx.Where("epic_id = ?", epicID).Order("created_at").Order("id").Find(&models).Error; err != nil {
			return err
		}

		tags, err := loadTagNames(tx, recordTags, ownerIDs(models, func(m RecordModel) string { return m.ID }))
		if err != nil {
			return err
		}
		records = make([]domain.Record, 0, len(models))
		for _, m := range models {
			record, err := recordModelToDomain(m, tags[m.ID])
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateRecord applies patch when the stored version equals expectedVersion
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, id string, patch domain.RecordPatch, expectedVersion int) (domain.Record, error) {
	var record domain.Record
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var current RecordModel
		if err := tx.Where("id = ?", id).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("record", id)
			}
			return err
		}
		if err := guardVersion(tx, "records", "record", id, expectedVersion); err != nil {
			return err
		}

		changes := map[string]any{}
		if patch.Type != nil {
			recordType := strings.TrimSpace(*patch.Type)
			if recordType == "" {
				return domain.Validation("record", "type is required")
			}
			changes["type"] = recordType
		}
		if patch.Data != nil {
			data, err := encodeJSONObject("record", patch.Data)
			if err != nil {
				return err
			}
			changes["data"] = data
		}

		if err := updateVersioned(tx, "records", "record", id, expectedVersion, changes); err != nil {
			return err
		}
		if patch.Tags != nil {
			projectID, err := recordProject(tx, current.EpicID)
			if err != nil {
				return err
			}
			if err := replaceTags(tx, recordTags, id, &projectID, *patch.Tags); err != nil {
				return err
			}
		}

		var err error
		record, err = loadRecord(tx, id)
		return err
	})
	if err != nil {
		return domain.Record{}, err
	}
	return record, nil
}

// DeleteRecord removes a record and its tags
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		res := tx.Exec("DELETE FROM record_tags WHERE record_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		res = tx.Where("id = ?", id).Delete(&RecordModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("record", id)
		}
		return nil
	})
}
