package cmd

import (
	"context"
	"fmt"

	"devboard/internal/domain"
	"devboard/internal/logging"
)

// ProjectsImportCmd creates a project populated from a template file
type ProjectsImportCmd struct {
	Description string `help:"Project description"`
	Name        string `help:"Project name" required:""`
	RootPath    string `help:"Project root directory" required:"" type:"path"`
	Template    string `arg:"" help:"Path to the YAML or JSON template" type:"existingfile"`
}

// Run executes the import command
func (p *ProjectsImportCmd) Run(container *Container) error {
	logging.Logger.Info("Executing projects import command", "template", p.Template, "name", p.Name)

	result, err := container.TemplateService.ImportFile(context.Background(), p.Template, domain.CreateProjectInput{
		Description: p.Description,
		Name:        p.Name,
		RootPath:    p.RootPath,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Project '%s' created (%s)\n", result.Project.Name, result.Project.ID)
	fmt.Printf("  Statuses: %d\n", len(result.StatusIDs))
	fmt.Printf("  Prompts:  %d\n", len(result.PromptIDs))
	fmt.Printf("  Profiles: %d\n", len(result.ProfileIDs))
	fmt.Printf("  Agents:   %d\n", len(result.AgentIDs))
	return nil
}
