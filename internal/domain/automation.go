package domain

import "time"

// Watcher polls terminal output and fires an event when its condition matches
type Watcher struct {
	Condition        map[string]any
	CreatedAt        time.Time
	Description      string
	Enabled          bool
	ID               string
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

// Subscriber runs an action when a matching event is published
type Subscriber struct {
	ActionInputs map[string]any
	ActionType   string
	CreatedAt    time.Time
	Description  string
	Enabled      bool
	EventFilter  map[string]any
	EventName    string
	GroupName    string
	ID           string
	Name         string
	Position     int
	Priority     int
	ProjectID    string
	UpdatedAt    time.Time
}
