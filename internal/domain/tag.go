package domain

import (
	"strings"
	"time"
)

// Tag is shared across epics, prompts, documents and records through
// junction tables. A nil ProjectID makes the tag global.
type Tag struct {
	CreatedAt time.Time
	ID        string
	Name      string
	ProjectID *string
	UpdatedAt time.Time
}

// TaggedKind names an entity kind that carries tags
type TaggedKind string

const (
	TaggedDocument TaggedKind = "document"
	TaggedEpic     TaggedKind = "epic"
	TaggedPrompt   TaggedKind = "prompt"
	TaggedRecord   TaggedKind = "record"
)

// NormalizeTagNames trims names, drops empty ones and removes exact
// duplicates while keeping the first-seen order.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		result = append(result, n)
	}
	return result
}
