package storage

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

// batchChunkSize bounds the number of ids bound into one IN clause
const batchChunkSize = 500

// tagJunction names the table linking one entity kind to tags
type tagJunction struct {
	table       string
	ownerColumn string
}

var (
	documentTags = tagJunction{table: "document_tags", ownerColumn: "document_id"}
	epicTags     = tagJunction{table: "epic_tags", ownerColumn: "epic_id"}
	promptTags   = tagJunction{table: "prompt_tags", ownerColumn: "prompt_id"}
	recordTags   = tagJunction{table: "record_tags", ownerColumn: "record_id"}
)

func junctionFor(kind domain.TaggedKind) (tagJunction, error) {
	switch kind {
	case domain.TaggedDocument:
		return documentTags, nil
	case domain.TaggedEpic:
		return epicTags, nil
	case domain.TaggedPrompt:
		return promptTags, nil
	case domain.TaggedRecord:
		return recordTags, nil
	}
	return tagJunction{}, domain.Validation("tag", "unknown tagged kind %q", kind)
}

// chunk splits ids into slices of at most size elements
func chunk(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		chunks = append(chunks, ids[start:min(start+size, len(ids))])
	}
	return chunks
}

// resolveTagIDs finds or creates one tag per normalized name. A tag matches
// when it belongs to projectID or is global; project tags win over global
// ones, then the oldest wins. New tags are scoped to projectID.
func resolveTagIDs(tx *gorm.DB, projectID *string, names []string) ([]string, error) {
	names = domain.NormalizeTagNames(names)
	ids := make([]string, 0, len(names))

	for _, name := range names {
		q := tx.Where("name = ?", name)
		if projectID != nil {
			q = q.Where("(project_id = ? OR project_id IS NULL)", *projectID).Order("project_id IS NULL")
		} else {
			q = q.Where("project_id IS NULL")
		}

		var tag TagModel
		err := q.Order("created_at").Order("id").Take(&tag).Error
		if err == nil {
			ids = append(ids, tag.ID)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		ts := now()
		tag = TagModel{
			CreatedAt: ts,
			ID:        uuid.NewString(),
			Name:      name,
			ProjectID: projectID,
			UpdatedAt: ts,
		}
		if err := tx.Create(&tag).Error; err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}

	return ids, nil
}

// replaceTags makes the owner's tag set exactly equal to names
func replaceTags(tx *gorm.DB, j tagJunction, ownerID string, projectID *string, names []string) error {
	ids, err := resolveTagIDs(tx, projectID, names)
	if err != nil {
		return err
	}

	if err := tx.Exec("DELETE FROM "+j.table+" WHERE "+j.ownerColumn+" = ?", ownerID).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	ts := now()
	rows := make([]map[string]any, len(ids))
	for i, id := range ids {
		rows[i] = map[string]any{j.ownerColumn: ownerID, "tag_id": id, "created_at": ts}
	}
	return tx.Table(j.table).Create(rows).Error
}

type ownerTag struct {
	OwnerID string
	Name    string
}

// loadTagNames returns the sorted tag names of every owner id, issuing one
// query per batchChunkSize ids. Every requested id gets an entry.
func loadTagNames(tx *gorm.DB, j tagJunction, ids []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ids))
	for _, id := range ids {
		result[id] = []string{}
	}

	for _, batch := range chunk(ids, batchChunkSize) {
		var rows []ownerTag
		err := tx.Raw(
			"SELECT j."+j.ownerColumn+" AS owner_id, t.name AS name FROM "+j.table+" j "+
				"JOIN tags t ON t.id = j.tag_id WHERE j."+j.ownerColumn+" IN ? ORDER BY t.name",
			batch,
		).Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			result[row.OwnerID] = append(result[row.OwnerID], row.Name)
		}
	}

	return result, nil
}

// withAllTags restricts q to owners carrying every one of names
func withAllTags(q *gorm.DB, j tagJunction, ownerRef string, names []string) *gorm.DB {
	names = domain.NormalizeTagNames(names)
	if len(names) == 0 {
		return q
	}
	sub := q.Session(&gorm.Session{NewDB: true}).
		Table(j.table+" j").
		Select("j."+j.ownerColumn).
		Joins("JOIN tags t ON t.id = j.tag_id").
		Where("t.name IN ?", names).
		Group("j."+j.ownerColumn).
		Having("COUNT(DISTINCT t.name) = ?", len(names))
	return q.Where(ownerRef+" IN (?)", sub)
}

func ownerIDs[T any](items []T, id func(T) string) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = id(item)
	}
	return ids
}

// uniqueIDs drops empty and repeated ids, keeping the first-seen order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
