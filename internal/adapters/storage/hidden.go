package storage

import (
	"strings"

	"gorm.io/gorm"

	"devboard/internal/domain"
)

// hiddenSubtreeSQL selects every epic whose status is hidden plus all of
// their descendants. The closure is recomputed on every query.
const hiddenSubtreeSQL = `WITH RECURSIVE hidden_epics(id) AS (
	SELECT e.id FROM epics e
	JOIN statuses s ON s.id = e.status_id
	WHERE s.mcp_hidden = 1 AND (? = '' OR e.project_id = ?)
	UNION
	SELECT c.id FROM epics c
	JOIN hidden_epics h ON c.parent_id = h.id
)
SELECT id FROM hidden_epics`

const archivedStatusSQL = `SELECT id FROM statuses WHERE lower(trim(label)) = ?`

// excludeHiddenSubtrees drops hidden epics and their descendants from q
func excludeHiddenSubtrees(q *gorm.DB, projectID string) *gorm.DB {
	return q.Where("epics.id NOT IN (?)", gorm.Expr(hiddenSubtreeSQL, projectID, projectID))
}

// applyEpicFilter adds the listing filters shared by every epic query
func applyEpicFilter(q *gorm.DB, f domain.EpicFilter) *gorm.DB {
	if f.ProjectID != "" {
		q = q.Where("epics.project_id = ?", f.ProjectID)
	}
	if f.StatusID != "" {
		q = q.Where("epics.status_id = ?", f.StatusID)
	}

	switch f.Type {
	case domain.EpicListActive:
		q = q.Where("epics.status_id NOT IN (?)", gorm.Expr(archivedStatusSQL, domain.ArchivedStatusLabel))
	case domain.EpicListArchived:
		q = q.Where("epics.status_id IN (?)", gorm.Expr(archivedStatusSQL, domain.ArchivedStatusLabel))
	}

	if f.ExcludeMcpHidden {
		q = excludeHiddenSubtrees(q, f.ProjectID)
	}

	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + query + "%"
		q = q.Where("(epics.title LIKE ? OR epics.description LIKE ?)", like, like)
	}

	if f.ParentID != nil {
		q = q.Where("epics.parent_id = ?", *f.ParentID)
	} else if f.RootsOnly {
		q = q.Where("epics.parent_id IS NULL")
	}

	return q
}
