package domain

import "time"

// Epic is a project-scoped work item. Epics form at most two levels:
// a child's parent always has a nil ParentID.
type Epic struct {
	AgentID     *string
	CreatedAt   time.Time
	Data        map[string]any
	Description string
	ID          string
	ParentID    *string
	ProjectID   string
	StatusID    string
	Tags        []string
	Title       string
	UpdatedAt   time.Time
	Version     int
}

// CreateEpicInput holds the fields accepted when creating an epic.
// An empty StatusID selects the project's first status by position.
type CreateEpicInput struct {
	AgentID     *string
	Data        map[string]any
	Description string
	ParentID    *string
	ProjectID   string
	StatusID    string
	Tags        []string
	Title       string
}

// EpicPatch lists the epic fields to change. ClearParent and ClearAgent
// null the reference; Tags replaces the whole tag set when non-nil.
type EpicPatch struct {
	AgentID     *string
	ClearAgent  bool
	ClearParent bool
	Data        map[string]any
	Description *string
	ParentID    *string
	StatusID    *string
	Tags        *[]string
	Title       *string
}

// EpicListType selects epics by whether their status is the archived stage
type EpicListType string

const (
	EpicListActive   EpicListType = "active"
	EpicListAll      EpicListType = "all"
	EpicListArchived EpicListType = "archived"
)

// EpicFilter narrows epic listings. The same filter drives the single-parent
// and the batched children listings.
type EpicFilter struct {
	ExcludeMcpHidden bool
	ParentID         *string
	ProjectID        string
	Query            string
	RootsOnly        bool
	StatusID         string
	Type             EpicListType
	Page
}

// EpicComment is a free-form note on an epic
type EpicComment struct {
	AuthorName string
	Content    string
	CreatedAt  time.Time
	EpicID     string
	ID         string
	UpdatedAt  time.Time
}
