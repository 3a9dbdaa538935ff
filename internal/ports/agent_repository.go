package ports

import (
	"context"

	"devboard/internal/domain"
)

// PromptRepository manages prompts
type PromptRepository interface {
	CreatePrompt(ctx context.Context, in domain.CreatePromptInput) (domain.Prompt, error)
	DeletePrompt(ctx context.Context, id string) error
	GetPrompt(ctx context.Context, id string) (domain.Prompt, error)
	ListPrompts(ctx context.Context, filter domain.PromptFilter) (domain.ListResult[domain.Prompt], error)
	UpdatePrompt(ctx context.Context, id string, patch domain.PromptPatch, expectedVersion int) (domain.Prompt, error)
}

// ProfileRepository manages agent profiles and their prompt lists
type ProfileRepository interface {
	CreateAgentProfile(ctx context.Context, in domain.CreateAgentProfileInput) (domain.AgentProfile, error)
	DeleteAgentProfile(ctx context.Context, id string) error
	GetAgentProfile(ctx context.Context, id string) (domain.AgentProfile, error)
	ListAgentProfiles(ctx context.Context, projectID *string) ([]domain.AgentProfile, error)
	ListProfilePrompts(ctx context.Context, profileID string) ([]domain.Prompt, error)
	SetProfilePrompts(ctx context.Context, profileID string, promptIDs []string) error
	UpdateAgentProfile(ctx context.Context, id string, patch domain.AgentProfilePatch) (domain.AgentProfile, error)
}

// AgentRepository manages agents
type AgentRepository interface {
	CreateAgent(ctx context.Context, in domain.CreateAgentInput) (domain.Agent, error)
	DeleteAgent(ctx context.Context, id string) error
	GetAgent(ctx context.Context, id string) (domain.Agent, error)
	ListAgents(ctx context.Context, projectID string) ([]domain.Agent, error)
	UpdateAgent(ctx context.Context, id string, patch domain.AgentPatch) (domain.Agent, error)
}
