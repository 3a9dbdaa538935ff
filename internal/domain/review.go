package domain

import "time"

// Review is a versioned code review attached to a project and optionally an epic
type Review struct {
	BaseRef     string
	CreatedAt   time.Time
	Description string
	EpicID      *string
	HeadRef     string
	ID          string
	ProjectID   string
	Status      string
	Title       string
	UpdatedAt   time.Time
	Version     int
}

// CreateReviewInput holds the fields accepted when creating a review
type CreateReviewInput struct {
	BaseRef     string
	Description string
	EpicID      *string
	HeadRef     string
	ProjectID   string
	Title       string
}

// ReviewPatch lists the review fields to change
type ReviewPatch struct {
	BaseRef     *string
	Description *string
	HeadRef     *string
	Status      *string
	Title       *string
}

// Review and comment statuses
const (
	ReviewStatusDraft    = "draft"
	CommentStatusOpen    = "open"
	CommentStatusResolve = "resolved"
)

// ReviewComment is a node of a review's reply tree
type ReviewComment struct {
	AuthorID       string
	AuthorType     string
	Content        string
	CreatedAt      time.Time
	FilePath       string
	ID             string
	LineEnd        *int
	LineStart      *int
	ParentID       *string
	ReviewID       string
	Status         string
	TargetAgentIDs []string
	UpdatedAt      time.Time
	Version        int
}

// CreateReviewCommentInput holds the fields accepted when creating a comment
type CreateReviewCommentInput struct {
	AuthorID       string
	AuthorType     string
	Content        string
	FilePath       string
	LineEnd        *int
	LineStart      *int
	ParentID       *string
	ReviewID       string
	TargetAgentIDs []string
}

// ReviewCommentPatch lists the comment fields to change
type ReviewCommentPatch struct {
	Content *string
	Status  *string
}
