package storage

import (
	"encoding/json"

	"gorm.io/datatypes"

	"devboard/internal/domain"
)

// encodeJSONObject serializes an optional object payload. Nil stays NULL.
func encodeJSONObject(entity string, v map[string]any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, domain.Validation(entity, "payload is not serializable: %v", err)
	}
	return datatypes.JSON(data), nil
}

// decodeJSONObject parses a stored object payload. Anything that is not a
// JSON object is reported as a validation error against the owning row.
func decodeJSONObject(entity, id string, raw datatypes.JSON) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &domain.Error{
			Kind:    domain.ErrValidation,
			Entity:  entity,
			ID:      id,
			Message: "stored payload is not a JSON object",
			Err:     err,
		}
	}
	return v, nil
}

func projectModelToDomain(m ProjectModel) domain.Project {
	return domain.Project{
		CreatedAt:   m.CreatedAt,
		Description: m.Description,
		ID:          m.ID,
		IsTemplate:  m.IsTemplate,
		Name:        m.Name,
		RootPath:    m.RootPath,
		UpdatedAt:   m.UpdatedAt,
	}
}

func statusModelToDomain(m StatusModel) domain.Status {
	return domain.Status{
		Color:     m.Color,
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		Label:     m.Label,
		McpHidden: m.McpHidden,
		Position:  m.Position,
		ProjectID: m.ProjectID,
		UpdatedAt: m.UpdatedAt,
	}
}

// epicModelToDomain converts an EpicModel (GORM) to domain.Epic
func epicModelToDomain(m EpicModel, tags []string) (domain.Epic, error) {
	data, err := decodeJSONObject("epic", m.ID, m.Data)
	if err != nil {
		return domain.Epic{}, err
	}
	if tags == nil {
		tags = []string{}
	}
	return domain.Epic{
		AgentID:     m.AgentID,
		CreatedAt:   m.CreatedAt,
		Data:        data,
		Description: m.Description,
		ID:          m.ID,
		ParentID:    m.ParentID,
		ProjectID:   m.ProjectID,
		StatusID:    m.StatusID,
		Tags:        tags,
		Title:       m.Title,
		UpdatedAt:   m.UpdatedAt,
		Version:     m.Version,
	}, nil
}

// epicModelsToDomain converts a page of epics using a batch-loaded tag map
func epicModelsToDomain(models []EpicModel, tags map[string][]string) ([]domain.Epic, error) {
	result := make([]domain.Epic, len(models))
	for i, m := range models {
		epic, err := epicModelToDomain(m, tags[m.ID])
		if err != nil {
			return nil, err
		}
		result[i] = epic
	}
	return result, nil
}

func tagModelToDomain(m TagModel) domain.Tag {
	return domain.Tag{
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		Name:      m.Name,
		ProjectID: m.ProjectID,
		UpdatedAt: m.UpdatedAt,
	}
}

func promptModelToDomain(m PromptModel, tags []string) domain.Prompt {
	if tags == nil {
		tags = []string{}
	}
	return domain.Prompt{
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Tags:      tags,
		Title:     m.Title,
		UpdatedAt: m.UpdatedAt,
		Version:   m.Version,
	}
}

func profileModelToDomain(m AgentProfileModel) (domain.AgentProfile, error) {
	options, err := decodeJSONObject("agent profile", m.ID, m.Options)
	if err != nil {
		return domain.AgentProfile{}, err
	}
	return domain.AgentProfile{
		CreatedAt:    m.CreatedAt,
		ID:           m.ID,
		Instructions: m.Instructions,
		MaxTokens:    m.MaxTokens,
		Name:         m.Name,
		Options:      options,
		ProjectID:    m.ProjectID,
		ProviderID:   m.ProviderID,
		Temperature:  domain.UnscaleTemperature(m.Temperature),
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

func agentModelToDomain(m AgentModel) domain.Agent {
	return domain.Agent{
		CreatedAt:   m.CreatedAt,
		Description: m.Description,
		ID:          m.ID,
		Name:        m.Name,
		ProfileID:   m.ProfileID,
		ProjectID:   m.ProjectID,
		UpdatedAt:   m.UpdatedAt,
	}
}

func recordModelToDomain(m RecordModel, tags []string) (domain.Record, error) {
	data, err := decodeJSONObject("record", m.ID, m.Data)
	if err != nil {
		return domain.Record{}, err
	}
	if data == nil {
		data = map[string]any{}
	}
	if tags == nil {
		tags = []string{}
	}
	return domain.Record{
		CreatedAt: m.CreatedAt,
		Data:      data,
		EpicID:    m.EpicID,
		ID:        m.ID,
		Tags:      tags,
		Type:      m.Type,
		UpdatedAt: m.UpdatedAt,
		Version:   m.Version,
	}, nil
}

func documentModelToDomain(m DocumentModel, tags []string) domain.Document {
	if tags == nil {
		tags = []string{}
	}
	return domain.Document{
		Archived:  m.Archived,
		ContentMd: m.ContentMd,
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Slug:      m.Slug,
		Tags:      tags,
		Title:     m.Title,
		UpdatedAt: m.UpdatedAt,
		Version:   m.Version,
	}
}

func reviewModelToDomain(m ReviewModel) domain.Review {
	return domain.Review{
		BaseRef:     m.BaseRef,
		CreatedAt:   m.CreatedAt,
		Description: m.Description,
		EpicID:      m.EpicID,
		HeadRef:     m.HeadRef,
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Status:      m.Status,
		Title:       m.Title,
		UpdatedAt:   m.UpdatedAt,
		Version:     m.Version,
	}
}

func reviewCommentModelToDomain(m ReviewCommentModel, targets []string) domain.ReviewComment {
	if targets == nil {
		targets = []string{}
	}
	return domain.ReviewComment{
		AuthorID:       m.AuthorID,
		AuthorType:     m.AuthorType,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		FilePath:       m.FilePath,
		ID:             m.ID,
		LineEnd:        m.LineEnd,
		LineStart:      m.LineStart,
		ParentID:       m.ParentID,
		ReviewID:       m.ReviewID,
		Status:         m.Status,
		TargetAgentIDs: targets,
		UpdatedAt:      m.UpdatedAt,
		Version:        m.Version,
	}
}

func guestModelToDomain(m GuestModel) domain.Guest {
	return domain.Guest{
		CreatedAt:     m.CreatedAt,
		ID:            m.ID,
		LastSeenAt:    m.LastSeenAt,
		Name:          m.Name,
		ProjectID:     m.ProjectID,
		TmuxSessionID: m.TmuxSessionID,
	}
}

func watcherModelToDomain(m WatcherModel) (domain.Watcher, error) {
	condition, err := decodeJSONObject("watcher", m.ID, m.Condition)
	if err != nil {
		return domain.Watcher{}, err
	}
	return domain.Watcher{
		Condition:        condition,
		CreatedAt:        m.CreatedAt,
		Description:      m.Description,
		Enabled:          m.Enabled,
		ID:               m.ID,
		IdleAfterSeconds: m.IdleAfterSeconds,
		Name:             m.Name,
		PollIntervalMs:   m.PollIntervalMs,
		ProjectID:        m.ProjectID,
		Scope:            m.Scope,
		ScopeFilter:      m.ScopeFilter,
		TriggerEvent:     m.TriggerEvent,
		UpdatedAt:        m.UpdatedAt,
		ViewportLines:    m.ViewportLines,
	}, nil
}

func subscriberModelToDomain(m SubscriberModel) (domain.Subscriber, error) {
	filter, err := decodeJSONObject("subscriber", m.ID, m.EventFilter)
	if err != nil {
		return domain.Subscriber{}, err
	}
	inputs, err := decodeJSONObject("subscriber", m.ID, m.ActionInputs)
	if err != nil {
		return domain.Subscriber{}, err
	}
	return domain.Subscriber{
		ActionInputs: inputs,
		ActionType:   m.ActionType,
		CreatedAt:    m.CreatedAt,
		Description:  m.Description,
		Enabled:      m.Enabled,
		EventFilter:  filter,
		EventName:    m.EventName,
		GroupName:    m.GroupName,
		ID:           m.ID,
		Name:         m.Name,
		Position:     m.Position,
		Priority:     m.Priority,
		ProjectID:    m.ProjectID,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

func sessionModelToDomain(m SessionModel) domain.AgentSession {
	return domain.AgentSession{
		AgentID:       m.AgentID,
		EndedAt:       m.EndedAt,
		EpicID:        m.EpicID,
		ID:            m.ID,
		ProjectID:     m.ProjectID,
		StartedAt:     m.StartedAt,
		Status:        m.Status,
		TmuxSessionID: m.TmuxSessionID,
	}
}

func epicCommentModelToDomain(m EpicCommentModel) domain.EpicComment {
	return domain.EpicComment{
		AuthorName: m.AuthorName,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
		EpicID:     m.EpicID,
		ID:         m.ID,
		UpdatedAt:  m.UpdatedAt,
	}
}

func chatThreadModelToDomain(m ChatThreadModel) domain.ChatThread {
	return domain.ChatThread{
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Title:     m.Title,
	}
}

func chatMessageModelToDomain(m ChatMessageModel, targets []string) domain.ChatMessage {
	if targets == nil {
		targets = []string{}
	}
	return domain.ChatMessage{
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		ProjectID: m.ProjectID,
		TargetIDs: targets,
		ThreadID:  m.ThreadID,
	}
}
