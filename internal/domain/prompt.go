package domain

import "time"

// Prompt is a reusable piece of agent instructions. A nil ProjectID makes it global.
type Prompt struct {
	Content   string
	CreatedAt time.Time
	ID        string
	ProjectID *string
	Tags      []string
	Title     string
	UpdatedAt time.Time
	Version   int
}

// CreatePromptInput holds the fields accepted when creating a prompt
type CreatePromptInput struct {
	Content   string
	ProjectID *string
	Tags      []string
	Title     string
}

// PromptPatch lists the prompt fields to change
type PromptPatch struct {
	Content *string
	Tags    *[]string
	Title   *string
}

// PromptFilter narrows ListPrompts. A nil ProjectID lists global prompts only.
type PromptFilter struct {
	ProjectID *string
	Query     string
	Tags      []string
	Page
}
