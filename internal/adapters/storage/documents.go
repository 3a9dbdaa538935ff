package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

func loadDocument(tx *gorm.DB, id string) (domain.Document, error) {
	var model DocumentModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Document{}, domain.NotFound("document", id)
	}
	if err != nil {
		return domain.Document{}, err
	}
	tags, err := loadTagNames(tx, documentTags, []string{id})
	if err != nil {
		return domain.Document{}, err
	}
	return documentModelToDomain(model, tags[id]), nil
}

// documentScope restricts q to one slug scope; global documents share one
func documentScope(q *gorm.DB, projectID *string) *gorm.DB {
	if projectID == nil {
		return q.Where("documents.project_id IS NULL")
	}
	return q.Where("documents.project_id = ?", *projectID)
}

func slugTaken(tx *gorm.DB, projectID *string, slug, exceptID string) (bool, error) {
	var count int64
	q := documentScope(tx.Model(&DocumentModel{}), projectID).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// uniqueSlug returns base, or base-2, base-3... whichever is free first
func uniqueSlug(tx *gorm.DB, projectID *string, base string) (string, error) {
	slug := base
	for n := 2; ; n++ {
		taken, err := slugTaken(tx, projectID, slug, "")
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// CreateDocument inserts a document. An empty slug is derived from the
// title and made unique; an explicit slug already in use is a Conflict.
func (r *SQLiteRepository) CreateDocument(ctx context.Context, in domain.CreateDocumentInput) (domain.Document, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Document{}, domain.Validation("document", "title is required")
	}

	var document domain.Document
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireOptionalProject(tx, in.ProjectID); err != nil {
			return err
		}

		slug := domain.Slugify(in.Slug)
		if strings.TrimSpace(in.Slug) == "" {
			var err error
			if slug, err = uniqueSlug(tx, in.ProjectID, domain.Slugify(title)); err != nil {
				return err
			}
		} else {
			taken, err := slugTaken(tx, in.ProjectID, slug, "")
			if err != nil {
				return err
			}
			if taken {
				return domain.Conflict("document", "slug %q is already in use", slug)
			}
		}

		ts := now()
		model := DocumentModel{
			ContentMd: in.ContentMd,
			CreatedAt: ts,
			ID:        uuid.NewString(),
			ProjectID: in.ProjectID,
			Slug:      slug,
			Title:     title,
			UpdatedAt: ts,
			Version:   1,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, documentTags, model.ID, model.ProjectID, in.Tags); err != nil {
			return err
		}

		var err error
		document, err = loadDocument(tx, model.ID)
		return err
	})
	if err != nil {
		return domain.Document{}, err
	}
	return document, nil
}

// GetDocument retrieves a document by id
func (r *SQLiteRepository) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	var document domain.Document
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		document, err = loadDocument(tx, id)
		return err
	})
	if err != nil {
		return domain.Document{}, err
	}
	return document, nil
}

// GetDocumentBySlug retrieves a document by its slug within a scope
func (r *SQLiteRepository) GetDocumentBySlug(ctx context.Context, projectID *string, slug string) (domain.Document, error) {
	var document domain.Document
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var model DocumentModel
		err := documentScope(tx.Model(&DocumentModel{}), projectID).Where("slug = ?", slug).Take(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("document", slug)
		}
		if err != nil {
			return err
		}
		document, err = loadDocument(tx, model.ID)
		return err
	})
	if err != nil {
		return domain.Document{}, err
	}
	return document, nil
}

// ListDocuments returns one page of documents ordered by title
func (r *SQLiteRepository) ListDocuments(ctx context.Context, filter domain.DocumentFilter) (domain.ListResult[domain.Document], error) {
	page := filter.Page.Normalize()
	result := domain.ListResult[domain.Document]{Limit: page.Limit, Offset: page.Offset}

	err := r.transact(ctx, func(tx *gorm.DB) error {
		base := func() *gorm.DB {
			q := documentScope(tx.Model(&DocumentModel{}), filter.ProjectID)
			if !filter.IncludeArchived {
				q = q.Where("documents.archived = ?", false)
			}
			if query := strings.TrimSpace(filter.Query); query != "" {
				like := "%" + query + "%"
				q = q.Where("(documents.title LIKE ? OR documents.content_md LIKE ?)", like, like)
			}
			return withAllTags(q, documentTags, "documents.id", filter.Tags)
		}

		if err := base().Count(&result.Total).Error; err != nil {
			return err
		}

		var models []DocumentModel
		if err := base().Order("documents.title").Order("documents.id").
			Limit(page.Limit).Offset(page.Offset).Find(&models).Error; err != nil {
			return err
		}

		tags, err := loadTagNames(tx, documentTags, ownerIDs(models, func(m DocumentModel) string { return m.ID }))
		if err != nil {
			return err
		}
		result.Items = make([]domain.Document, len(models))
		for i, m := range models {
			result.Items[i] = documentModelToDomain(m, tags[m.ID])
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[domain.Document]{}, err
	}
	return result, nil
}

// UpdateDocument applies patch when the stored version equals expectedVersion
func (r *SQLiteRepository) UpdateDocument(ctx context.Context, id string, patch domain.DocumentPatch, expectedVersion int) (domain.Document, error) {
	var document domain.Document
	err := r.transact(ctx, func(tx *gorm.DB) error {
		current, err := loadDocument(tx, id)
		if err != nil {
			return err
		}
		if err := guardVersion(tx, "documents", "document", id, expectedVersion); err != nil {
			return err
		}

		changes := map[string]any{}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return domain.Validation("document", "title is required")
			}
			changes["title"] = title
		}
		if patch.ContentMd != nil {
			changes["content_md"] = *patch.ContentMd
		}
		if patch.Archived != nil {
			changes["archived"] = *patch.Archived
		}
		if patch.Slug != nil {
			if strings.TrimSpace(*patch.Slug) == "" {
				return domain.Validation("document", "slug cannot be empty")
			}
			slug := domain.Slugify(*patch.Slug)
			taken, err := slugTaken(tx, current.ProjectID, slug, id)
			if err != nil {
				return err
			}
			if taken {
				return domain.Conflict("document", "slug %q is already in use", slug)
			}
			changes["slug"] = slug
		}

		if err := updateVersioned(tx, "documents", "document", id, expectedVersion, changes); err != nil {
			return err
		}
		if patch.Tags != nil {
			if err := replaceTags(tx, documentTags, id, current.ProjectID, *patch.Tags); err != nil {
				return err
			}
		}

		document, err = loadDocument(tx, id)
		return err
	})
	if err != nil {
		return domain.Document{}, err
	}
	return document, nil
}

// DeleteDocument removes a document and its tags
func (r *SQLiteRepository) DeleteDocument(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM document_tags WHERE document_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&DocumentModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("document", id)
		}
		return nil
	})
}
