package storage

import (
	"time"

	"gorm.io/datatypes"
)

// Column layouts live in migrations/; these models only mirror them.

// ProjectModel is the GORM model for projects table
type ProjectModel struct {
	CreatedAt   time.Time
	Description string
	ID          string `gorm:"primaryKey"`
	IsTemplate  bool
	Name        string
	RootPath    string
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (ProjectModel) TableName() string { return "projects" }

// StatusModel is the GORM model for statuses table
type StatusModel struct {
	Color     string
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	Label     string
	McpHidden bool
	Position  int
	ProjectID string
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (StatusModel) TableName() string { return "statuses" }

// EpicModel is the GORM model for epics table
type EpicModel struct {
	AgentID     *string
	CreatedAt   time.Time
	Data        datatypes.JSON
	Description string
	ID          string `gorm:"primaryKey"`
	ParentID    *string
	ProjectID   string
	StatusID    string
	Title       string
	UpdatedAt   time.Time
	Version     int
}

// TableName specifies the table name for GORM
func (EpicModel) TableName() string { return "epics" }

// EpicCommentModel is the GORM model for epic_comments table
type EpicCommentModel struct {
	AuthorName string
	Content    string
	CreatedAt  time.Time
	EpicID     string
	ID         string `gorm:"primaryKey"`
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (EpicCommentModel) TableName() string { return "epic_comments" }

// TagModel is the GORM model for tags table
type TagModel struct {
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	Name      string
	ProjectID *string
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (TagModel) TableName() string { return "tags" }

// PromptModel is the GORM model for prompts table
type PromptModel struct {
	Content   string
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	ProjectID *string
	Title     string
	UpdatedAt time.Time
	Version   int
}

// TableName specifies the table name for GORM
func (PromptModel) TableName() string { return "prompts" }

// AgentProfileModel is the GORM model for agent_profiles table.
// Temperature is stored multiplied by domain.TemperatureScale.
type AgentProfileModel struct {
	CreatedAt    time.Time
	ID           string `gorm:"primaryKey"`
	Instructions string
	MaxTokens    *int
	Name         string
	Options      datatypes.JSON
	ProjectID    *string
	ProviderID   string
	Temperature  *int
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (AgentProfileModel) TableName() string { return "agent_profiles" }

// ProfilePromptModel is the GORM model for profile_prompts table
type ProfilePromptModel struct {
	CreatedAt time.Time
	Position  int
	ProfileID string `gorm:"primaryKey"`
	PromptID  string `gorm:"primaryKey"`
}

// TableName specifies the table name for GORM
func (ProfilePromptModel) TableName() string { return "profile_prompts" }

// AgentModel is the GORM model for agents table
type AgentModel struct {
	CreatedAt   time.Time
	Description string
	ID          string `gorm:"primaryKey"`
	Name        string
	ProfileID   string
	ProjectID   string
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (AgentModel) TableName() string { return "agents" }

// RecordModel is the GORM model for records table
type RecordModel struct {
	CreatedAt time.Time
	Data      datatypes.JSON
	EpicID    string
	ID        string `gorm:"primaryKey"`
	Type      string
	UpdatedAt time.Time
	Version   int
}

// TableName specifies the table name for GORM
func (RecordModel) TableName() string { return "records" }

// DocumentModel is the GORM model for documents table
type DocumentModel struct {
	Archived  bool
	ContentMd string
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	ProjectID *string
	Slug      string
	Title     string
	UpdatedAt time.Time
	Version   int
}

// TableName specifies the table name for GORM
func (DocumentModel) TableName() string { return "documents" }

// ReviewModel is the GORM model for reviews table
type ReviewModel struct {
	BaseRef     string
	CreatedAt   time.Time
	Description string
	EpicID      *string
	HeadRef     string
	ID          string `gorm:"primaryKey"`
	ProjectID   string
	Status      string
	Title       string
	UpdatedAt   time.Time
	Version     int
}

// TableName specifies the table name for GORM
func (ReviewModel) TableName() string { return "reviews" }

// ReviewCommentModel is the GORM model for review_comments table
type ReviewCommentModel struct {
	AuthorID   string
	AuthorType string
	Content    string
	CreatedAt  time.Time
	FilePath   string
	ID         string `gorm:"primaryKey"`
	LineEnd    *int
	LineStart  *int
	ParentID   *string
	ReviewID   string
	Status     string
	UpdatedAt  time.Time
	Version    int
}

// TableName specifies the table name for GORM
func (ReviewCommentModel) TableName() string { return "review_comments" }

// ReviewCommentTargetModel is the GORM model for review_comment_targets table
type ReviewCommentTargetModel struct {
	AgentID   string `gorm:"primaryKey"`
	CommentID string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (ReviewCommentTargetModel) TableName() string { return "review_comment_targets" }

// GuestModel is the GORM model for guests table
type GuestModel struct {
	CreatedAt     time.Time
	ID            string `gorm:"primaryKey"`
	LastSeenAt    time.Time
	Name          string
	ProjectID     string
	TmuxSessionID string
}

// TableName specifies the table name for GORM
func (GuestModel) TableName() string { return "guests" }

// WatcherModel is the GORM model for watchers table
type WatcherModel struct {
	Condition        datatypes.JSON
	CreatedAt        time.Time
	Description      string
	Enabled          bool
	ID               string `gorm:"primaryKey"`
	IdleAfterSeconds int
	Name             string
	PollIntervalMs   int
	ProjectID        string
	Scope            string
	ScopeFilter      string
	TriggerEvent     string
	UpdatedAt        time.Time
	ViewportLines    int
}

// TableName specifies the table name for GORM
func (WatcherModel) TableName() string { return "watchers" }

// SubscriberModel is the GORM model for subscribers table
type SubscriberModel struct {
	ActionInputs datatypes.JSON
	ActionType   string
	CreatedAt    time.Time
	Description  string
	Enabled      bool
	EventFilter  datatypes.JSON
	EventName    string
	GroupName    string
	ID           string `gorm:"primaryKey"`
	Name         string
	Position     int
	Priority     int
	ProjectID    string
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (SubscriberModel) TableName() string { return "subscribers" }

// SessionModel is the GORM model for sessions table
type SessionModel struct {
	AgentID       string
	EndedAt       *time.Time
	EpicID        *string
	ID            string `gorm:"primaryKey"`
	ProjectID     string
	StartedAt     time.Time
	Status        string
	TmuxSessionID string
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string { return "sessions" }

// SessionTranscriptModel is the GORM model for session_transcripts table
type SessionTranscriptModel struct {
	Content   string
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	SessionID string
}

// TableName specifies the table name for GORM
func (SessionTranscriptModel) TableName() string { return "session_transcripts" }

// ChatThreadModel is the GORM model for chat_threads table
type ChatThreadModel struct {
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	ProjectID string
	Title     string
}

// TableName specifies the table name for GORM
func (ChatThreadModel) TableName() string { return "chat_threads" }

// ChatMessageModel is the GORM model for chat_messages table
type ChatMessageModel struct {
	AuthorID  string
	Content   string
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	ProjectID string
	ThreadID  string
}

// TableName specifies the table name for GORM
func (ChatMessageModel) TableName() string { return "chat_messages" }

// ChatMessageReadModel is the GORM model for chat_message_reads table
type ChatMessageReadModel struct {
	MessageID string `gorm:"primaryKey"`
	ReadAt    time.Time
	ReaderID  string `gorm:"primaryKey"`
}

// TableName specifies the table name for GORM
func (ChatMessageReadModel) TableName() string { return "chat_message_reads" }

// ChatMessageTargetModel is the GORM model for chat_message_targets table
type ChatMessageTargetModel struct {
	AgentID   string `gorm:"primaryKey"`
	MessageID string `gorm:"primaryKey"`
}

// TableName specifies the table name for GORM
func (ChatMessageTargetModel) TableName() string { return "chat_message_targets" }

// ChatInviteModel is the GORM model for chat_invites table
type ChatInviteModel struct {
	AgentID   string
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	MessageID *string
	ThreadID  string
}

// TableName specifies the table name for GORM
func (ChatInviteModel) TableName() string { return "chat_invites" }

// ChatActivityModel is the GORM model for chat_activities table
type ChatActivityModel struct {
	AgentID   *string
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	Kind      string
	ThreadID  string
}

// TableName specifies the table name for GORM
func (ChatActivityModel) TableName() string { return "chat_activities" }

// ChatMemberModel is the GORM model for chat_members table
type ChatMemberModel struct {
	CreatedAt time.Time
	MemberID  string `gorm:"primaryKey"`
	ThreadID  string `gorm:"primaryKey"`
}

// TableName specifies the table name for GORM
func (ChatMemberModel) TableName() string { return "chat_members" }

// ProjectSkillModel is the GORM model for project_skills table
type ProjectSkillModel struct {
	CreatedAt time.Time
	Enabled   bool
	ProjectID string `gorm:"primaryKey"`
	SkillSlug string `gorm:"primaryKey"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (ProjectSkillModel) TableName() string { return "project_skills" }
