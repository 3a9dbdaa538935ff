package ports

import (
	"context"

	"devboard/internal/domain"
)

// DocumentRepository manages markdown documents
type DocumentRepository interface {
	CreateDocument(ctx context.Context, in domain.CreateDocumentInput) (domain.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	GetDocument(ctx context.Context, id string) (domain.Document, error)
	GetDocumentBySlug(ctx context.Context, projectID *string, slug string) (domain.Document, error)
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) (domain.ListResult[domain.Document], error)
	UpdateDocument(ctx context.Context, id string, patch domain.DocumentPatch, expectedVersion int) (domain.Document, error)
}

// ReviewRepository manages reviews and their comment trees
type ReviewRepository interface {
	CreateReview(ctx context.Context, in domain.CreateReviewInput) (domain.Review, error)
	CreateReviewComment(ctx context.Context, in domain.CreateReviewCommentInput) (domain.ReviewComment, error)
	DeleteReview(ctx context.Context, id string) error
	DeleteReviewComment(ctx context.Context, id string) error
	GetReview(ctx context.Context, id string) (domain.Review, error)
	GetReviewComment(ctx context.Context, id string) (domain.ReviewComment, error)
	ListReviewComments(ctx context.Context, reviewID string) ([]domain.ReviewComment, error)
	ListReviews(ctx context.Context, projectID string) ([]domain.Review, error)
	SetCommentTargets(ctx context.Context, commentID string, agentIDs []string) (domain.ReviewComment, error)
	UpdateReview(ctx context.Context, id string, patch domain.ReviewPatch, expectedVersion int) (domain.Review, error)
	UpdateReviewComment(ctx context.Context, id string, patch domain.ReviewCommentPatch, expectedVersion int) (domain.ReviewComment, error)
}
