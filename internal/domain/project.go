package domain

import (
	"strings"
	"time"
)

// Project is the root of ownership for every other entity
type Project struct {
	CreatedAt   time.Time
	Description string
	ID          string
	IsTemplate  bool
	Name        string
	RootPath    string
	UpdatedAt   time.Time
}

// CreateProjectInput holds the fields accepted when creating a project
type CreateProjectInput struct {
	Description string
	IsTemplate  bool
	Name        string
	RootPath    string
}

// ProjectPatch lists the project fields to change. Nil fields are left alone.
type ProjectPatch struct {
	Description *string
	IsTemplate  *bool
	Name        *string
	RootPath    *string
}

// ProjectFilter narrows ListProjects
type ProjectFilter struct {
	IsTemplate *bool
	Page
}

// Status is a workflow stage owned by a project
type Status struct {
	Color     string
	CreatedAt time.Time
	ID        string
	Label     string
	McpHidden bool
	Position  int
	ProjectID string
	UpdatedAt time.Time
}

// ArchivedStatusLabel marks the workflow stage treated as archived by epic listings
const ArchivedStatusLabel = "archived"

// IsArchived reports whether the status is the archived stage
func (s Status) IsArchived() bool {
	return strings.EqualFold(strings.TrimSpace(s.Label), ArchivedStatusLabel)
}

// CreateStatusInput holds the fields accepted when creating a status
type CreateStatusInput struct {
	Color     string
	Label     string
	McpHidden bool
	Position  *int
	ProjectID string
}

// StatusPatch lists the status fields to change
type StatusPatch struct {
	Color     *string
	Label     *string
	McpHidden *bool
	Position  *int
}

// Page is a limit/offset window. A zero Limit means DefaultPageLimit.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Normalize clamps the page to sane bounds
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ListResult is one page of a listing plus the unpaged total
type ListResult[T any] struct {
	Items  []T
	Limit  int
	Offset int
	Total  int64
}
