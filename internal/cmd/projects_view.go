package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"devboard/internal/domain"
)

// ProjectsViewCmd views a specific project
type ProjectsViewCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
	ID     string `arg:"" help:"ID of the project to view"`
}

type projectView struct {
	Project  domain.Project  `json:"project"`
	Statuses []domain.Status `json:"statuses"`
}

// Run executes the view command
func (p *ProjectsViewCmd) Run(container *Container) error {
	ctx := context.Background()

	project, err := container.Repository.GetProject(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	statuses, err := container.Repository.ListStatuses(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to list statuses: %w", err)
	}

	if p.Format == "json" {
		data, err := json.MarshalIndent(projectView{Project: project, Statuses: statuses}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Project: %s\n", project.Name)
	fmt.Printf("ID: %s\n", project.ID)
	fmt.Printf("Root Path: %s\n", project.RootPath)
	if project.Description != "" {
		fmt.Printf("Description: %s\n", project.Description)
	}
	fmt.Printf("Template: %t\n", project.IsTemplate)
	fmt.Printf("Created: %s\n", project.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated: %s\n", project.UpdatedAt.Format("2006-01-02 15:04:05"))

	fmt.Printf("\nStatuses:\n")
	for _, status := range statuses {
		hidden := ""
		if status.McpHidden {
			hidden = " (hidden)"
		}
		fmt.Printf("  %d. %s%s\n", status.Position, status.Label, hidden)
	}
	return nil
}
