package storage

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devboard/internal/domain"
	"devboard/internal/logging"
)

// CreateProjectWithTemplate creates a project and populates it from tpl.
// Everything runs in one explicit transaction; any failure leaves no row
// behind, the project included.
func (r *SQLiteRepository) CreateProjectWithTemplate(ctx context.Context, in domain.CreateProjectInput, tpl domain.ProjectTemplate) (domain.TemplateImportResult, error) {
	name := strings.TrimSpace(in.Name)
	rootPath := strings.TrimSpace(in.RootPath)
	if err := validateProjectInput(name, rootPath); err != nil {
		return domain.TemplateImportResult{}, err
	}

	var result domain.TemplateImportResult
	err := r.withRawTx(ctx, func(tx *gorm.DB) error {
		result = domain.TemplateImportResult{
			AgentIDs:   map[string]string{},
			ProfileIDs: map[string]string{},
			PromptIDs:  map[string]string{},
			StatusIDs:  map[string]string{},
		}

		if err := ensureRootPathFree(tx, rootPath, ""); err != nil {
			return err
		}

		ts := now()
		project := ProjectModel{
			CreatedAt:   ts,
			Description: in.Description,
			ID:          uuid.NewString(),
			IsTemplate:  in.IsTemplate,
			Name:        name,
			RootPath:    rootPath,
			UpdatedAt:   ts,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		result.Project = projectModelToDomain(project)

		if err := importStatuses(tx, project.ID, tpl.Statuses, result.StatusIDs); err != nil {
			return err
		}
		if err := importPrompts(tx, project.ID, tpl.Prompts, result.PromptIDs); err != nil {
			return err
		}
		if err := importProfiles(tx, project.ID, tpl.Profiles, result.ProfileIDs); err != nil {
			return err
		}
		return importAgents(tx, project.ID, tpl.Agents, result.ProfileIDs, result.AgentIDs)
	})
	if err != nil {
		return domain.TemplateImportResult{}, classify(err)
	}

	logging.Logger.Info("Project created from template",
		"project", result.Project.ID,
		"statuses", len(result.StatusIDs),
		"prompts", len(result.PromptIDs),
		"profiles", len(result.ProfileIDs),
		"agents", len(result.AgentIDs),
	)
	return result, nil
}

// mapLocalID records localID -> newID, rejecting duplicate local ids.
// Entries without a local id are created but not mapped.
func mapLocalID(ids map[string]string, entity, localID, newID string) error {
	if localID == "" {
		return nil
	}
	if _, ok := ids[localID]; ok {
		return domain.Validation("template", "duplicate %s id %q", entity, localID)
	}
	ids[localID] = newID
	return nil
}

func importStatuses(tx *gorm.DB, projectID string, statuses []domain.TemplateStatus, ids map[string]string) error {
	ordered := make([]domain.TemplateStatus, len(statuses))
	copy(ordered, statuses)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	ts := now()
	for _, s := range ordered {
		label := strings.TrimSpace(s.Label)
		if label == "" {
			return domain.Validation("template", "status %q has no label", s.ID)
		}
		model := StatusModel{
			Color:     s.Color,
			CreatedAt: ts,
			ID:        uuid.NewString(),
			Label:     label,
			McpHidden: s.McpHidden,
			Position:  s.Position,
			ProjectID: projectID,
			UpdatedAt: ts,
		}
		if err := mapLocalID(ids, "status", s.ID, model.ID); err != nil {
			return err
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
	}
	return nil
}

func importPrompts(tx *gorm.DB, projectID string, prompts []domain.TemplatePrompt, ids map[string]string) error {
	ts := now()
	for _, p := range prompts {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			return domain.Validation("template", "prompt %q has no title", p.ID)
		}
		model := PromptModel{
			Content:   p.Content,
			CreatedAt: ts,
			ID:        uuid.NewString(),
			ProjectID: &projectID,
			Title:     title,
			UpdatedAt: ts,
			Version:   1,
		}
		if err := mapLocalID(ids, "prompt", p.ID, model.ID); err != nil {
			return err
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, promptTags, model.ID, &projectID, p.Tags); err != nil {
			return err
		}
	}
	return nil
}

func importProfiles(tx *gorm.DB, projectID string, profiles []domain.TemplateProfile, ids map[string]string) error {
	ts := now()
	for _, p := range profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return domain.Validation("template", "profile %q has no name", p.ID)
		}
		if strings.TrimSpace(p.ProviderID) == "" {
			return domain.Validation("template", "profile %q has no provider", p.ID)
		}
		options, err := encodeJSONObject("template", p.Options)
		if err != nil {
			return err
		}
		model := AgentProfileModel{
			CreatedAt:    ts,
			ID:           uuid.NewString(),
			Instructions: p.Instructions,
			MaxTokens:    p.MaxTokens,
			Name:         name,
			Options:      options,
			ProjectID:    &projectID,
			ProviderID:   p.ProviderID,
			Temperature:  domain.ScaleTemperature(p.Temperature),
			UpdatedAt:    ts,
		}
		if err := mapLocalID(ids, "profile", p.ID, model.ID); err != nil {
			return err
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
	}
	return nil
}

func importAgents(tx *gorm.DB, projectID string, agents []domain.TemplateAgent, profileIDs, ids map[string]string) error {
	ts := now()
	for _, a := range agents {
		profileID, ok := profileIDs[a.ProfileID]
		if !ok {
			return domain.Validation("template", "agent %q references unknown profile %q", a.Name, a.ProfileID)
		}
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return domain.Validation("template", "agent %q has no name", a.ID)
		}
		model := AgentModel{
			CreatedAt:   ts,
			Description: a.Description,
			ID:          uuid.NewString(),
			Name:        name,
			ProfileID:   profileID,
			ProjectID:   projectID,
			UpdatedAt:   ts,
		}
		if err := mapLocalID(ids, "agent", a.ID, model.ID); err != nil {
			return err
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
	}
	return nil
}
