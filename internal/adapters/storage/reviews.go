package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
)

func takeReview(tx *gorm.DB, id string) (ReviewModel, error) {
	var model ReviewModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, domain.NotFound("review", id)
	}
	return model, err
}

func takeReviewComment(tx *gorm.DB, id string) (ReviewCommentModel, error) {
	var model ReviewCommentModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, domain.NotFound("review comment", id)
	}
	return model, err
}

// loadCommentTargets returns the target agent ids of each comment
func loadCommentTargets(tx *gorm.DB, commentIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(commentIDs))
	for _, id := range commentIDs {
		result[id] = []string{}
	}
	for _, batch := range chunk(commentIDs, batchChunkSize) {
		var rows []ReviewCommentTargetModel
		if err := tx.Where("comment_id IN ?", batch).Order("agent_id").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			result[row.CommentID] = append(result[row.CommentID], row.AgentID)
		}
	}
	return result, nil
}

func loadReviewComment(tx *gorm.DB, id string) (domain.ReviewComment, error) {
	model, err := takeReviewComment(tx, id)
	if err != nil {
		return domain.ReviewComment{}, err
	}
	targets, err := loadCommentTargets(tx, []string{id})
	if err != nil {
		return domain.ReviewComment{}, err
	}
	return reviewCommentModelToDomain(model, targets[id]), nil
}

// replaceCommentTargets sets the target agents of a comment. Every agent must
// belong to projectID.
func replaceCommentTargets(tx *gorm.DB, commentID, projectID string, agentIDs []string) error {
	agentIDs = uniqueIDs(agentIDs)
	if len(agentIDs) > 0 {
		var agents []AgentModel
		if err := tx.Select("id", "project_id").Where("id IN ?", agentIDs).Find(&agents).Error; err != nil {
			return err
		}
		projects := make(map[string]string, len(agents))
		for _, a := range agents {
			projects[a.ID] = a.ProjectID
		}
		for _, id := range agentIDs {
			p, ok := projects[id]
			if !ok {
				return domain.Validation("review comment", "target agent %s does not exist", id)
			}
			if p != projectID {
				return domain.Validation("review comment", "target agent %s belongs to another project", id)
			}
		}
	}

	if err := tx.Where("comment_id = ?", commentID).Delete(&ReviewCommentTargetModel{}).Error; err != nil {
		return err
	}
	if len(agentIDs) == 0 {
		return nil
	}

	ts := now()
	rows := make([]ReviewCommentTargetModel, len(agentIDs))
	for i, id := range agentIDs {
		rows[i] = ReviewCommentTargetModel{AgentID: id, CommentID: commentID, CreatedAt: ts}
	}
	return tx.Create(&rows).Error
}

// CreateReview opens a draft review, optionally bound to an epic of the project
func (r *SQLiteRepository) CreateReview(ctx context.Context, in domain.CreateReviewInput) (domain.Review, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Review{}, domain.Validation("review", "title is required")
	}

	ts := now()
	model := ReviewModel{
		BaseRef:     in.BaseRef,
		CreatedAt:   ts,
		Description: in.Description,
		EpicID:      in.EpicID,
		HeadRef:     in.HeadRef,
		ID:          uuid.NewString(),
		ProjectID:   in.ProjectID,
		Status:      domain.ReviewStatusDraft,
		Title:       title,
		UpdatedAt:   ts,
		Version:     1,
	}
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, in.ProjectID); err != nil {
			return err
		}
		if in.EpicID != nil {
			epic, err := takeEpic(tx, *in.EpicID)
			if err != nil {
				return err
			}
			if epic.ProjectID != in.ProjectID {
				return domain.Validation("review", "epic %s belongs to another project", epic.ID)
			}
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Review{}, err
	}
	return reviewModelToDomain(model), nil
}

// GetReview retrieves a review by id
func (r *SQLiteRepository) GetReview(ctx context.Context, id string) (domain.Review, error) {
	var model ReviewModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		model, err = takeReview(tx, id)
		return err
	})
	if err != nil {
		return domain.Review{}, err
	}
	return reviewModelToDomain(model), nil
}

// ListReviews returns the reviews of a project, most recently updated first
func (r *SQLiteRepository) ListReviews(ctx context.Context, projectID string) ([]domain.Review, error) {
	var models []ReviewModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		return tx.Where("project_id = ?", projectID).
			Order("updated_at DESC").Order("id DESC").
			Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, len(models))
	for i, m := range models {
		reviews[i] = reviewModelToDomain(m)
	}
	return reviews, nil
}

// UpdateReview applies patch when the stored version equals expectedVersion
func (r *SQLiteRepository) UpdateReview(ctx context.Context, id string, patch domain.ReviewPatch, expectedVersion int) (domain.Review, error) {
	var model ReviewModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := guardVersion(tx, "reviews", "review", id, expectedVersion); err != nil {
			return err
		}

		changes := map[string]any{}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return domain.Validation("review", "title is required")
			}
			changes["title"] = title
		}
		if patch.Description != nil {
			changes["description"] = *patch.Description
		}
		if patch.Status != nil {
			if strings.TrimSpace(*patch.Status) == "" {
				return domain.Validation("review", "status is required")
			}
			changes["status"] = *patch.Status
		}
		if patch.BaseRef != nil {
			changes["base_ref"] = *patch.BaseRef
		}
		if patch.HeadRef != nil {
			changes["head_ref"] = *patch.HeadRef
		}

		if err := updateVersioned(tx, "reviews", "review", id, expectedVersion, changes); err != nil {
			return err
		}
		var err error
		model, err = takeReview(tx, id)
		return err
	})
	if err != nil {
		return domain.Review{}, err
	}
	return reviewModelToDomain(model), nil
}

// DeleteReview removes a review with all of its comments
func (r *SQLiteRepository) DeleteReview(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeReview(tx, id); err != nil {
			return err
		}
		steps := []string{
			"DELETE FROM review_comment_targets WHERE comment_id IN (SELECT id FROM review_comments WHERE review_id = ?)",
			"DELETE FROM review_comments WHERE review_id = ?",
			"DELETE FROM reviews WHERE id = ?",
		}
		for _, stmt := range steps {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateReviewComment adds a comment or a reply to a review
func (r *SQLiteRepository) CreateReviewComment(ctx context.Context, in domain.CreateReviewCommentInput) (domain.ReviewComment, error) {
	if strings.TrimSpace(in.Content) == "" {
		return domain.ReviewComment{}, domain.Validation("review comment", "content is required")
	}
	if in.LineStart != nil && in.LineEnd != nil && *in.LineEnd < *in.LineStart {
		return domain.ReviewComment{}, domain.Validation("review comment", "line range ends before it starts")
	}
	authorType := in.AuthorType
	if authorType == "" {
		authorType = "user"
	}

	var comment domain.ReviewComment
	err := r.transact(ctx, func(tx *gorm.DB) error {
		review, err := takeReview(tx, in.ReviewID)
		if err != nil {
			return err
		}
		if in.ParentID != nil {
			parent, err := takeReviewComment(tx, *in.ParentID)
			if err != nil {
				return err
			}
			if parent.ReviewID != in.ReviewID {
				return domain.Validation("review comment", "parent %s belongs to another review", parent.ID)
			}
		}

		ts := now()
		model := ReviewCommentModel{
			AuthorID:   in.AuthorID,
			AuthorType: authorType,
			Content:    in.Content,
			CreatedAt:  ts,
			FilePath:   in.FilePath,
			ID:         uuid.NewString(),
			LineEnd:    in.LineEnd,
			LineStart:  in.LineStart,
			ParentID:   in.ParentID,
			ReviewID:   in.ReviewID,
			Status:     domain.CommentStatusOpen,
			UpdatedAt:  ts,
			Version:    1,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if err := replaceCommentTargets(tx, model.ID, review.ProjectID, in.TargetAgentIDs); err != nil {
			return err
		}

		comment, err = loadReviewComment(tx, model.ID)
		return err
	})
	if err != nil {
		return domain.ReviewComment{}, err
	}
	return comment, nil
}

// GetReviewComment retrieves a comment with its targets
func (r *SQLiteRepository) GetReviewComment(ctx context.Context, id string) (domain.ReviewComment, error) {
	var comment domain.ReviewComment
	err := r.transact(ctx, func(tx *gorm.DB) error {
		var err error
		comment, err = loadReviewComment(tx, id)
		return err
	})
	if err != nil {
		return domain.ReviewComment{}, err
	}
	return comment, nil
}

// ListReviewComments returns every comment of a review, oldest first
func (r *SQLiteRepository) ListReviewComments(ctx context.Context, reviewID string) ([]domain.ReviewComment, error) {
	var comments []domain.ReviewComment
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeReview(tx, reviewID); err != nil {
			return err
		}

		var models []ReviewCommentModel
		if err := tx.Where("review_id = ?", reviewID).Order("created_at").Order("id").Find(&models).Error; err != nil {
			return err
		}
		targets, err := loadCommentTargets(tx, ownerIDs(models, func(m ReviewCommentModel) string { return m.ID }))
		if err != nil {
			return err
		}
		comments = make([]domain.ReviewComment, len(models))
		for i, m := range models {
			comments[i] = reviewCommentModelToDomain(m, targets[m.ID])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateReviewComment applies patch when the stored version equals
// expectedVersion. A patch that leaves content and status as stored returns
// the comment untouched without bumping its version.
func (r *SQLiteRepository) UpdateReviewComment(ctx context.Context, id string, patch domain.ReviewCommentPatch, expectedVersion int) (domain.ReviewComment, error) {
	var comment domain.ReviewComment
	err := r.transact(ctx, func(tx *gorm.DB) error {
		current, err := takeReviewComment(tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("review comment", id, expectedVersion, versionRow{Version: current.Version, UpdatedAt: current.UpdatedAt}); err != nil {
			return err
		}

		changes := map[string]any{}
		if patch.Content != nil && *patch.Content != current.Content {
			if strings.TrimSpace(*patch.Content) == "" {
				return domain.Validation("review comment", "content is required")
			}
			changes["content"] = *patch.Content
		}
		if patch.Status != nil && *patch.Status != current.Status {
			if *patch.Status != domain.CommentStatusOpen && *patch.Status != domain.CommentStatusResolve {
				return domain.Validation("review comment", "unknown status %q", *patch.Status)
			}
			changes["status"] = *patch.Status
		}

		if len(changes) > 0 {
			if err := updateVersioned(tx, "review_comments", "review comment", id, current.Version, changes); err != nil {
				return err
			}
		}

		comment, err = loadReviewComment(tx, id)
		return err
	})
	if err != nil {
		return domain.ReviewComment{}, err
	}
	return comment, nil
}

// DeleteReviewComment removes a comment together with every reply below it
func (r *SQLiteRepository) DeleteReviewComment(ctx context.Context, id string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeReviewComment(tx, id); err != nil {
			return err
		}

		ids := []string{id}
		frontier := []string{id}
		for len(frontier) > 0 {
			var replies []string
			if err := tx.Model(&ReviewCommentModel{}).Where("parent_id IN ?", frontier).Pluck("id", &replies).Error; err != nil {
				return err
			}
			ids = append(ids, replies...)
			frontier = replies
		}

		for _, batch := range chunk(ids, batchChunkSize) {
			if err := tx.Where("comment_id IN ?", batch).Delete(&ReviewCommentTargetModel{}).Error; err != nil {
				return err
			}
		}
		// Deepest replies first so no row outlives its parent
		for i := len(ids) - 1; i >= 0; i-- {
			if err := tx.Where("id = ?", ids[i]).Delete(&ReviewCommentModel{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SetCommentTargets replaces the agents a comment is addressed to
func (r *SQLiteRepository) SetCommentTargets(ctx context.Context, commentID string, agentIDs []string) (domain.ReviewComment, error) {
	var comment domain.ReviewComment
	err := r.transact(ctx, func(tx *gorm.DB) error {
		model, err := takeReviewComment(tx, commentID)
		if err != nil {
			return err
		}
		review, err := takeReview(tx, model.ReviewID)
		if err != nil {
			return err
		}
		if err := replaceCommentTargets(tx, commentID, review.ProjectID, agentIDs); err != nil {
			return err
		}
		comment, err = loadReviewComment(tx, commentID)
		return err
	})
	if err != nil {
		return domain.ReviewComment{}, err
	}
	return comment, nil
}
