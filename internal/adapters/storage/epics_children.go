package storage

import (
	"context"

	"gorm.io/gorm"

	"devboard/internal/domain"
)

const rankedChildrenSelect = "epics.*, ROW_NUMBER() OVER (" +
	"PARTITION BY epics.parent_id ORDER BY epics.updated_at DESC, epics.id DESC) AS rn"

// ListChildrenForParents returns up to limitPerParent of the most recently
// updated children of each parent in one ranked query per chunk of parents.
// Every requested parent gets an entry, empty when it has no children.
func (r *SQLiteRepository) ListChildrenForParents(
	ctx context.Context,
	projectID string,
	parentIDs []string,
	limitPerParent int,
	filter domain.EpicFilter,
) (map[string][]domain.Epic, error) {
	result := make(map[string][]domain.Epic, len(parentIDs))
	unique := make([]string, 0, len(parentIDs))
	for _, id := range parentIDs {
		if _, ok := result[id]; ok {
			continue
		}
		result[id] = []domain.Epic{}
		unique = append(unique, id)
	}
	if len(unique) == 0 || limitPerParent <= 0 {
		return result, nil
	}

	filter.ProjectID = projectID
	filter.ParentID = nil
	filter.RootsOnly = false

	err := r.transact(ctx, func(tx *gorm.DB) error {
		var models []EpicModel
		for _, batch := range chunk(unique, batchChunkSize) {
			inner := applyEpicFilter(tx.Model(&EpicModel{}), filter).
				Where("epics.parent_id IN ?", batch).
				Select(rankedChildrenSelect)

			var ranked []EpicModel
			err := tx.Table("(?) AS ranked", inner).
				Where("rn <= ?", limitPerParent).
				Order("parent_id").Order("rn").
				Find(&ranked).Error
			if err != nil {
				return err
			}
			models = append(models, ranked...)
		}

		tags, err := loadTagNames(tx, epicTags, ownerIDs(models, func(m EpicModel) string { return m.ID }))
		if err != nil {
			return err
		}
		for _, m := range models {
			epic, err := epicModelToDomain(m, tags[m.ID])
			if err != nil {
				return err
			}
			result[*m.ParentID] = append(result[*m.ParentID], epic)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
