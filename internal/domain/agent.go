package domain

import (
	"math"
	"time"
)

// AgentProfile configures how agents talk to a provider.
// Temperature is kept as the caller sees it; the store keeps it scaled by 100.
type AgentProfile struct {
	CreatedAt    time.Time
	ID           string
	Instructions string
	MaxTokens    *int
	Name         string
	Options      map[string]any
	ProjectID    *string
	ProviderID   string
	Temperature  *float64
	UpdatedAt    time.Time
}

// CreateAgentProfileInput holds the fields accepted when creating a profile
type CreateAgentProfileInput struct {
	Instructions string
	MaxTokens    *int
	Name         string
	Options      map[string]any
	ProjectID    *string
	ProviderID   string
	Temperature  *float64
}

// AgentProfilePatch lists the profile fields to change
type AgentProfilePatch struct {
	Instructions *string
	MaxTokens    *int
	Name         *string
	Options      map[string]any
	ProviderID   *string
	Temperature  *float64
}

// TemperatureScale is the factor applied to temperatures before storage
const TemperatureScale = 100

// ScaleTemperature converts a temperature to its stored integer form
func ScaleTemperature(t *float64) *int {
	if t == nil {
		return nil
	}
	v := int(math.Round(*t * TemperatureScale))
	return &v
}

// UnscaleTemperature converts a stored temperature back
func UnscaleTemperature(v *int) *float64 {
	if v == nil {
		return nil
	}
	t := float64(*v) / TemperatureScale
	return &t
}

// Agent is a named worker bound to a profile of the same project
type Agent struct {
	CreatedAt   time.Time
	Description string
	ID          string
	Name        string
	ProfileID   string
	ProjectID   string
	UpdatedAt   time.Time
}

// CreateAgentInput holds the fields accepted when creating an agent
type CreateAgentInput struct {
	Description string
	Name        string
	ProfileID   string
	ProjectID   string
}

// AgentPatch lists the agent fields to change
type AgentPatch struct {
	Description *string
	Name        *string
	ProfileID   *string
}
