package domain

import "time"

// Agent session states
const (
	SessionStatusRunning = "running"
	SessionStatusStopped = "stopped"
)

// AgentSession is one run of an agent, optionally bound to an epic
type AgentSession struct {
	AgentID       string
	EndedAt       *time.Time
	EpicID        *string
	ID            string
	ProjectID     string
	StartedAt     time.Time
	Status        string
	TmuxSessionID string
}

// ChatThread groups chat messages within a project
type ChatThread struct {
	CreatedAt time.Time
	ID        string
	ProjectID string
	Title     string
}

// ChatMessage is one message of a thread
type ChatMessage struct {
	AuthorID  string
	Content   string
	CreatedAt time.Time
	ID        string
	ProjectID string
	TargetIDs []string
	ThreadID  string
}

// StartSessionInput holds the fields accepted when starting a session.
// The session takes the project of its agent.
type StartSessionInput struct {
	AgentID       string
	EpicID        *string
	TmuxSessionID string
}

// PostChatMessageInput holds the fields accepted when posting a message
type PostChatMessageInput struct {
	AuthorID  string
	Content   string
	TargetIDs []string
	ThreadID  string
}
