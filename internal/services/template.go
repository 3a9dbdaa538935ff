package services

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"devboard/internal/config"
	"devboard/internal/domain"
	"devboard/internal/logging"
	"devboard/internal/ports"
)

//go:embed schemas/project_template.json
var templateSchema []byte

// TemplateService loads project templates and imports them
type TemplateService struct {
	importer ports.TemplateImporter
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(importer ports.TemplateImporter) *TemplateService {
	return &TemplateService{
		importer: importer,
	}
}

// ParseTemplate decodes a YAML or JSON template and validates it against
// the template schema.
func ParseTemplate(data []byte) (domain.ProjectTemplate, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.ProjectTemplate{}, domain.Validation("template", "not valid YAML or JSON: %v", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(templateSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return domain.ProjectTemplate{}, domain.Validation("template", "schema validation error: %v", err)
	}
	if !result.Valid() {
		problems := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			problems[i] = e.String()
		}
		return domain.ProjectTemplate{}, domain.Validation("template", "%s", strings.Join(problems, "; "))
	}

	var tpl domain.ProjectTemplate
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return domain.ProjectTemplate{}, domain.Validation("template", "cannot decode template: %v", err)
	}
	return tpl, nil
}

// LoadTemplateFile reads and parses a template file
func LoadTemplateFile(path string) (domain.ProjectTemplate, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return domain.ProjectTemplate{}, fmt.Errorf("failed to read template: %w", err)
	}
	return ParseTemplate(data)
}

// ImportFile creates a project populated from the template at path
func (s *TemplateService) ImportFile(
	ctx context.Context,
	path string,
	in domain.CreateProjectInput,
) (domain.TemplateImportResult, error) {
	logging.Logger.Info("Importing project template", "path", path, "project", in.Name)

	tpl, err := LoadTemplateFile(path)
	if err != nil {
		logging.Logger.Error("Failed to load template", "path", path, "error", err)
		return domain.TemplateImportResult{}, err
	}

	result, err := s.importer.CreateProjectWithTemplate(ctx, in, tpl)
	if err != nil {
		logging.Logger.Error("Failed to import template", "path", path, "error", err)
		return domain.TemplateImportResult{}, fmt.Errorf("failed to import template: %w", err)
	}

	logging.Logger.Info("Template imported", "project", result.Project.ID)
	return result, nil
}
