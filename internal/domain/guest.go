package domain

import "time"

// Guest is an externally started agent registered through its tmux session
type Guest struct {
	CreatedAt     time.Time
	ID            string
	LastSeenAt    time.Time
	Name          string
	ProjectID     string
	TmuxSessionID string
}

// RegisterGuestInput holds the fields accepted when registering a guest
type RegisterGuestInput struct {
	Name          string
	ProjectID     string
	TmuxSessionID string
}
