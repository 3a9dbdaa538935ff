package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devboard/internal/domain"
)

func TestVersionedUpdates_StaleVersionBeforeValidation(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "stale")
	ctx := context.Background()

	root := f.epic(t, repo, "root", nil, "")
	child := f.epic(t, repo, "child", &root.ID, "")
	root, err := repo.UpdateEpic(ctx, root.ID, domain.EpicPatch{Description: ptr("moved on")}, root.Version)
	require.NoError(t, err)
	require.Equal(t, 2, root.Version)

	prompt, err := repo.CreatePrompt(ctx, domain.CreatePromptInput{Title: "p", ProjectID: &f.project.ID})
	require.NoError(t, err)
	_, err = repo.UpdatePrompt(ctx, prompt.ID, domain.PromptPatch{Content: ptr("v2")}, prompt.Version)
	require.NoError(t, err)

	document, err := repo.CreateDocument(ctx, domain.CreateDocumentInput{ProjectID: &f.project.ID, Title: "doc"})
	require.NoError(t, err)
	taken, err := repo.CreateDocument(ctx, domain.CreateDocumentInput{ProjectID: &f.project.ID, Title: "taken"})
	require.NoError(t, err)
	_, err = repo.UpdateDocument(ctx, document.ID, domain.DocumentPatch{ContentMd: ptr("v2")}, document.Version)
	require.NoError(t, err)

	record, err := repo.CreateRecord(ctx, domain.CreateRecordInput{EpicID: child.ID, Type: "metric"})
	require.NoError(t, err)
	_, err = repo.UpdateRecord(ctx, record.ID, domain.RecordPatch{Data: map[string]any{"n": float64(1)}}, record.Version)
	require.NoError(t, err)

	review, err := repo.CreateReview(ctx, domain.CreateReviewInput{ProjectID: f.project.ID, Title: "PR", BaseRef: "main", HeadRef: "topic"})
	require.NoError(t, err)
	_, err = repo.UpdateReview(ctx, review.ID, domain.ReviewPatch{Description: ptr("v2")}, review.Version)
	require.NoError(t, err)

	comment, err := repo.CreateReviewComment(ctx, domain.CreateReviewCommentInput{ReviewID: review.ID, Content: "nit"})
	require.NoError(t, err)
	_, err = repo.UpdateReviewComment(ctx, comment.ID, domain.ReviewCommentPatch{Content: ptr("nit, v2")}, comment.Version)
	require.NoError(t, err)

	tests := []struct {
		name   string
		update func() error
	}{
		{"epic own parent", func() error {
			_, err := repo.UpdateEpic(ctx, root.ID, domain.EpicPatch{ParentID: &root.ID}, 1)
			return err
		}},
		{"epic under own child", func() error {
			_, err := repo.UpdateEpic(ctx, root.ID, domain.EpicPatch{ParentID: &child.ID}, 1)
			return err
		}},
		{"epic missing parent", func() error {
			_, err := repo.UpdateEpic(ctx, root.ID, domain.EpicPatch{ParentID: ptr("nope")}, 1)
			return err
		}},
		{"epic empty title", func() error {
			_, err := repo.UpdateEpic(ctx, root.ID, domain.EpicPatch{Title: ptr(" ")}, 1)
			return err
		}},
		{"epic unknown agent", func() error {
			_, err := repo.UpdateEpic(ctx, root.ID, domain.EpicPatch{AgentID: ptr("ghost")}, 1)
			return err
		}},
		{"epic unknown status", func() error {
			_, err := repo.UpdateEpic(ctx, root.ID, domain.EpicPatch{StatusID: ptr("ghost")}, 1)
			return err
		}},
		{"prompt empty title", func() error {
			_, err := repo.UpdatePrompt(ctx, prompt.ID, domain.PromptPatch{Title: ptr("")}, 1)
			return err
		}},
		{"document taken slug", func() error {
			_, err := repo.UpdateDocument(ctx, document.ID, domain.DocumentPatch{Slug: ptr(taken.Slug)}, 1)
			return err
		}},
		{"document empty title", func() error {
			_, err := repo.UpdateDocument(ctx, document.ID, domain.DocumentPatch{Title: ptr("")}, 1)
			return err
		}},
		{"record empty type", func() error {
			_, err := repo.UpdateRecord(ctx, record.ID, domain.RecordPatch{Type: ptr("")}, 1)
			return err
		}},
		{"review empty title", func() error {
			_, err := repo.UpdateReview(ctx, review.ID, domain.ReviewPatch{Title: ptr("")}, 1)
			return err
		}},
		{"review comment empty content", func() error {
			_, err := repo.UpdateReviewComment(ctx, comment.ID, domain.ReviewCommentPatch{Content: ptr("")}, 1)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update()

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConflict)
			assert.NotErrorIs(t, err, domain.ErrValidation)
			var conflict *domain.VersionConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, 1, conflict.Expected)
			assert.Equal(t, 2, conflict.Actual)
		})
	}

	// A missing row is still not found, whatever the version
	_, err = repo.UpdateEpic(ctx, "missing", domain.EpicPatch{Title: ptr("")}, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
