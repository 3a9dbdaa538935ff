package domain

// ProjectTemplate is a blueprint for a new project. IDs inside a template are
// local to it and only used to link agents to profiles.
type ProjectTemplate struct {
	Agents   []TemplateAgent   `json:"agents" yaml:"agents"`
	Profiles []TemplateProfile `json:"profiles" yaml:"profiles"`
	Prompts  []TemplatePrompt  `json:"prompts" yaml:"prompts"`
	Statuses []TemplateStatus  `json:"statuses" yaml:"statuses"`
}

// TemplateStatus is a status blueprint
type TemplateStatus struct {
	Color     string `json:"color" yaml:"color"`
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	McpHidden bool   `json:"mcpHidden" yaml:"mcpHidden"`
	Position  int    `json:"position" yaml:"position"`
}

// TemplatePrompt is a prompt blueprint
type TemplatePrompt struct {
	Content string   `json:"content" yaml:"content"`
	ID      string   `json:"id" yaml:"id"`
	Tags    []string `json:"tags" yaml:"tags"`
	Title   string   `json:"title" yaml:"title"`
}

// TemplateProfile is an agent profile blueprint
type TemplateProfile struct {
	ID           string         `json:"id" yaml:"id"`
	Instructions string         `json:"instructions" yaml:"instructions"`
	MaxTokens    *int           `json:"maxTokens" yaml:"maxTokens"`
	Name         string         `json:"name" yaml:"name"`
	Options      map[string]any `json:"options" yaml:"options"`
	ProviderID   string         `json:"providerId" yaml:"providerId"`
	Temperature  *float64       `json:"temperature" yaml:"temperature"`
}

// TemplateAgent is an agent blueprint; ProfileID refers to a TemplateProfile.ID
type TemplateAgent struct {
	Description string `json:"description" yaml:"description"`
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	ProfileID   string `json:"profileId" yaml:"profileId"`
}

// TemplateImportResult maps template-local ids to the ids created by the import
type TemplateImportResult struct {
	AgentIDs   map[string]string
	ProfileIDs map[string]string
	Project    Project
	PromptIDs  map[string]string
	StatusIDs  map[string]string
}
