package ports

import (
	"context"

	"devboard/internal/domain"
)

// EpicReader reads epics and their hierarchy
type EpicReader interface {
	GetEpic(ctx context.Context, id string) (domain.Epic, error)
	ListChildrenForParents(ctx context.Context, projectID string, parentIDs []string, limitPerParent int, filter domain.EpicFilter) (map[string][]domain.Epic, error)
	ListEpics(ctx context.Context, filter domain.EpicFilter) (domain.ListResult[domain.Epic], error)
	ListSubEpics(ctx context.Context, parentID string, filter domain.EpicFilter) (domain.ListResult[domain.Epic], error)
}

// EpicWriter mutates epics. UpdateEpic is versioned.
type EpicWriter interface {
	CreateEpic(ctx context.Context, in domain.CreateEpicInput) (domain.Epic, error)
	DeleteEpic(ctx context.Context, id string) error
	UpdateEpic(ctx context.Context, id string, patch domain.EpicPatch, expectedVersion int) (domain.Epic, error)
}

// EpicCommentRepository manages notes on epics
type EpicCommentRepository interface {
	CreateEpicComment(ctx context.Context, epicID, authorName, content string) (domain.EpicComment, error)
	ListEpicComments(ctx context.Context, epicID string) ([]domain.EpicComment, error)
}

// EpicRepository is the composite epic interface
type EpicRepository interface {
	EpicCommentRepository
	EpicReader
	EpicWriter
}

// TagRepository manages the shared tag pool
type TagRepository interface {
	CreateTag(ctx context.Context, projectID *string, name string) (domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	GetTag(ctx context.Context, id string) (domain.Tag, error)
	GetTagsForEntities(ctx context.Context, kind domain.TaggedKind, ids []string) (map[string][]string, error)
	ListTags(ctx context.Context, projectID *string) ([]domain.Tag, error)
	UpdateTag(ctx context.Context, id, name string) (domain.Tag, error)
}

// RecordRepository manages records attached to epics
type RecordRepository interface {
	CreateRecord(ctx context.Context, in domain.CreateRecordInput) (domain.Record, error)
	DeleteRecord(ctx context.Context, id string) error
	GetRecord(ctx context.Context, id string) (domain.Record, error)
	ListRecords(ctx context.Context, epicID string) ([]domain.Record, error)
	UpdateRecord(ctx context.Context, id string, patch domain.RecordPatch, expectedVersion int) (domain.Record, error)
}
