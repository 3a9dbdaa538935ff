package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devboard/internal/domain"
)

// CreateSession starts a running session for an agent
func (r *SQLiteRepository) CreateSession(ctx context.Context, in domain.StartSessionInput) (domain.AgentSession, error) {
	var model SessionModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		agent, err := takeAgent(tx, in.AgentID)
		if err != nil {
			return err
		}
		if in.EpicID != nil {
			epic, err := takeEpic(tx, *in.EpicID)
			if err != nil {
				return err
			}
			if epic.ProjectID != agent.ProjectID {
				return domain.Validation("session", "epic %s belongs to another project", epic.ID)
			}
		}

		model = SessionModel{
			AgentID:       agent.ID,
			EpicID:        in.EpicID,
			ID:            uuid.NewString(),
			ProjectID:     agent.ProjectID,
			StartedAt:     now(),
			Status:        domain.SessionStatusRunning,
			TmuxSessionID: in.TmuxSessionID,
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.AgentSession{}, err
	}
	return sessionModelToDomain(model), nil
}

// EndSession marks a session stopped. Ending a stopped session is a no-op.
func (r *SQLiteRepository) EndSession(ctx context.Context, id string) (domain.AgentSession, error) {
	var model SessionModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("session", id)
			}
			return err
		}
		if model.Status == domain.SessionStatusStopped {
			return nil
		}

		ended := now()
		model.EndedAt = &ended
		model.Status = domain.SessionStatusStopped
		return tx.Model(&SessionModel{}).Where("id = ?", id).
			Updates(map[string]any{"status": model.Status, "ended_at": ended}).Error
	})
	if err != nil {
		return domain.AgentSession{}, err
	}
	return sessionModelToDomain(model), nil
}

// ListActiveSessions returns the running sessions of a project
func (r *SQLiteRepository) ListActiveSessions(ctx context.Context, projectID string) ([]domain.AgentSession, error) {
	var models []SessionModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		return tx.Where("project_id = ? AND status = ?", projectID, domain.SessionStatusRunning).
			Order("started_at").Order("id").Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.AgentSession, len(models))
	for i, m := range models {
		sessions[i] = sessionModelToDomain(m)
	}
	return sessions, nil
}

// AppendTranscript stores a chunk of session output
func (r *SQLiteRepository) AppendTranscript(ctx context.Context, sessionID, content string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&SessionModel{}).Where("id = ?", sessionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.NotFound("session", sessionID)
		}
		return tx.Create(&SessionTranscriptModel{
			Content:   content,
			CreatedAt: now(),
			ID:        uuid.NewString(),
			SessionID: sessionID,
		}).Error
	})
}

// CreateChatThread opens a chat thread in a project
func (r *SQLiteRepository) CreateChatThread(ctx context.Context, projectID, title string) (domain.ChatThread, error) {
	model := ChatThreadModel{
		CreatedAt: now(),
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     strings.TrimSpace(title),
	}
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, projectID); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.ChatThread{}, err
	}
	return chatThreadModelToDomain(model), nil
}

func takeChatThread(tx *gorm.DB, id string) (ChatThreadModel, error) {
	var model ChatThreadModel
	err := tx.Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, domain.NotFound("chat thread", id)
	}
	return model, err
}

// PostChatMessage adds a message to a thread. Targets must be agents of the
// thread's project.
func (r *SQLiteRepository) PostChatMessage(ctx context.Context, in domain.PostChatMessageInput) (domain.ChatMessage, error) {
	if strings.TrimSpace(in.Content) == "" {
		return domain.ChatMessage{}, domain.Validation("chat message", "content is required")
	}
	targets := uniqueIDs(in.TargetIDs)

	var model ChatMessageModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		thread, err := takeChatThread(tx, in.ThreadID)
		if err != nil {
			return err
		}

		if len(targets) > 0 {
			var count int64
			if err := tx.Model(&AgentModel{}).
				Where("id IN ? AND project_id = ?", targets, thread.ProjectID).
				Count(&count).Error; err != nil {
				return err
			}
			if int(count) != len(targets) {
				return domain.Validation("chat message", "every target must be an agent of the project")
			}
		}

		model = ChatMessageModel{
			AuthorID:  in.AuthorID,
			Content:   in.Content,
			CreatedAt: now(),
			ID:        uuid.NewString(),
			ProjectID: thread.ProjectID,
			ThreadID:  thread.ID,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}
		rows := make([]ChatMessageTargetModel, len(targets))
		for i, id := range targets {
			rows[i] = ChatMessageTargetModel{AgentID: id, MessageID: model.ID}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return chatMessageModelToDomain(model, targets), nil
}

// ListChatMessages returns the messages of a thread, oldest first
func (r *SQLiteRepository) ListChatMessages(ctx context.Context, threadID string) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeChatThread(tx, threadID); err != nil {
			return err
		}

		var models []ChatMessageModel
		if err := tx.Where("thread_id = ?", threadID).Order("created_at").Order("id").Find(&models).Error; err != nil {
			return err
		}

		targets := make(map[string][]string, len(models))
		for _, batch := range chunk(ownerIDs(models, func(m ChatMessageModel) string { return m.ID }), batchChunkSize) {
			var rows []ChatMessageTargetModel
			if err := tx.Where("message_id IN ?", batch).Order("agent_id").Find(&rows).Error; err != nil {
				return err
			}
			for _, row := range rows {
				targets[row.MessageID] = append(targets[row.MessageID], row.AgentID)
			}
		}

		messages = make([]domain.ChatMessage, len(models))
		for i, m := range models {
			messages[i] = chatMessageModelToDomain(m, targets[m.ID])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkMessageRead stores a read receipt. Marking twice keeps the first one.
func (r *SQLiteRepository) MarkMessageRead(ctx context.Context, messageID, readerID string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ChatMessageModel{}).Where("id = ?", messageID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.NotFound("chat message", messageID)
		}

		if err := tx.Model(&ChatMessageReadModel{}).
			Where("message_id = ? AND reader_id = ?", messageID, readerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&ChatMessageReadModel{MessageID: messageID, ReadAt: now(), ReaderID: readerID}).Error
	})
}

// AddChatMember joins a member to a thread; joining twice is a no-op
func (r *SQLiteRepository) AddChatMember(ctx context.Context, threadID, memberID string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeChatThread(tx, threadID); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&ChatMemberModel{CreatedAt: now(), MemberID: memberID, ThreadID: threadID}).Error
	})
}

// InviteToChat invites an agent of the thread's project, optionally
// pointing at the message that prompted the invite.
func (r *SQLiteRepository) InviteToChat(ctx context.Context, threadID, agentID string, messageID *string) error {
	return r.transact(ctx, func(tx *gorm.DB) error {
		thread, err := takeChatThread(tx, threadID)
		if err != nil {
			return err
		}
		agent, err := takeAgent(tx, agentID)
		if err != nil {
			return err
		}
		if agent.ProjectID != thread.ProjectID {
			return domain.Validation("chat invite", "agent %s belongs to another project", agentID)
		}
		return tx.Create(&ChatInviteModel{
			AgentID:   agentID,
			CreatedAt: now(),
			ID:        uuid.NewString(),
			MessageID: messageID,
			ThreadID:  threadID,
		}).Error
	})
}

// RecordChatActivity logs an activity event on a thread
func (r *SQLiteRepository) RecordChatActivity(ctx context.Context, threadID string, agentID *string, kind string) error {
	if strings.TrimSpace(kind) == "" {
		return domain.Validation("chat activity", "kind is required")
	}
	return r.transact(ctx, func(tx *gorm.DB) error {
		if _, err := takeChatThread(tx, threadID); err != nil {
			return err
		}
		return tx.Create(&ChatActivityModel{
			AgentID:   agentID,
			CreatedAt: now(),
			ID:        uuid.NewString(),
			Kind:      kind,
			ThreadID:  threadID,
		}).Error
	})
}

// SetProjectSkill enables or disables a skill source for a project
func (r *SQLiteRepository) SetProjectSkill(ctx context.Context, projectID, skillSlug string, enabled bool) error {
	if strings.TrimSpace(skillSlug) == "" {
		return domain.Validation("project skill", "skill slug is required")
	}
	return r.transact(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, projectID); err != nil {
			return err
		}
		ts := now()
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "skill_slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).Create(&ProjectSkillModel{
			CreatedAt: ts,
			Enabled:   enabled,
			ProjectID: projectID,
			SkillSlug: skillSlug,
			UpdatedAt: ts,
		}).Error
	})
}

// ListProjectSkills returns the enablement of every skill set for a project
func (r *SQLiteRepository) ListProjectSkills(ctx context.Context, projectID string) (map[string]bool, error) {
	var models []ProjectSkillModel
	err := r.transact(ctx, func(tx *gorm.DB) error {
		return tx.Where("project_id = ?", projectID).Order("skill_slug").Find(&models).Error
	})
	if err != nil {
		return nil, err
	}

	skills := make(map[string]bool, len(models))
	for _, m := range models {
		skills[m.SkillSlug] = m.Enabled
	}
	return skills, nil
}
