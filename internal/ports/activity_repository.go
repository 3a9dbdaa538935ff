package ports

import (
	"context"

	"devboard/internal/domain"
)

// GuestRepository manages guest registrations
type GuestRepository interface {
	DeleteGuest(ctx context.Context, id string) error
	GetGuest(ctx context.Context, id string) (domain.Guest, error)
	GetGuestByTmuxSession(ctx context.Context, tmuxSessionID string) (domain.Guest, error)
	ListGuests(ctx context.Context, projectID string) ([]domain.Guest, error)
	RegisterGuest(ctx context.Context, in domain.RegisterGuestInput) (domain.Guest, error)
	TouchGuest(ctx context.Context, id string) (domain.Guest, error)
}

// AutomationRepository manages watchers and subscribers
type AutomationRepository interface {
	CreateSubscriber(ctx context.Context, s domain.Subscriber) (domain.Subscriber, error)
	CreateWatcher(ctx context.Context, w domain.Watcher) (domain.Watcher, error)
	DeleteSubscriber(ctx context.Context, id string) error
	DeleteWatcher(ctx context.Context, id string) error
	GetSubscriber(ctx context.Context, id string) (domain.Subscriber, error)
	GetWatcher(ctx context.Context, id string) (domain.Watcher, error)
	ListSubscribers(ctx context.Context, projectID string) ([]domain.Subscriber, error)
	ListWatchers(ctx context.Context, projectID string) ([]domain.Watcher, error)
	UpdateSubscriber(ctx context.Context, s domain.Subscriber) (domain.Subscriber, error)
	UpdateWatcher(ctx context.Context, w domain.Watcher) (domain.Watcher, error)
}

// SessionRepository tracks agent sessions and their transcripts
type SessionRepository interface {
	AppendTranscript(ctx context.Context, sessionID, content string) error
	CreateSession(ctx context.Context, in domain.StartSessionInput) (domain.AgentSession, error)
	EndSession(ctx context.Context, id string) (domain.AgentSession, error)
	ListActiveSessions(ctx context.Context, projectID string) ([]domain.AgentSession, error)
}

// ChatRepository stores chat threads and messages
type ChatRepository interface {
	AddChatMember(ctx context.Context, threadID, memberID string) error
	CreateChatThread(ctx context.Context, projectID, title string) (domain.ChatThread, error)
	InviteToChat(ctx context.Context, threadID, agentID string, messageID *string) error
	ListChatMessages(ctx context.Context, threadID string) ([]domain.ChatMessage, error)
	MarkMessageRead(ctx context.Context, messageID, readerID string) error
	PostChatMessage(ctx context.Context, in domain.PostChatMessageInput) (domain.ChatMessage, error)
	RecordChatActivity(ctx context.Context, threadID string, agentID *string, kind string) error
}

// SkillRepository stores which skill sources a project has enabled
type SkillRepository interface {
	ListProjectSkills(ctx context.Context, projectID string) (map[string]bool, error)
	SetProjectSkill(ctx context.Context, projectID, skillSlug string, enabled bool) error
}

// ActivityRepository is the composite activity interface
type ActivityRepository interface {
	ChatRepository
	SessionRepository
	SkillRepository
}
