package cmd

import (
	"context"
	"fmt"

	"devboard/internal/domain"
	"devboard/internal/logging"
)

// ProjectsDelCmd deletes a project
type ProjectsDelCmd struct {
	Force bool   `help:"Force deletion without confirmation" short:"f"`
	ID    string `arg:"" help:"ID of the project to delete"`
}

// Run executes the del command
func (p *ProjectsDelCmd) Run(container *Container) error {
	logging.Logger.Info("Executing projects del command", "project", p.ID, "force", p.Force)

	ctx := context.Background()
	project, err := container.Repository.GetProject(ctx, p.ID)
	if err != nil {
		logging.Logger.Error("Project not found", "project", p.ID, "error", err)
		return fmt.Errorf("project not found: %w", err)
	}

	if !p.Force && !p.confirmDeletion(project) {
		return nil
	}

	if err := container.Repository.DeleteProject(ctx, p.ID); err != nil {
		logging.Logger.Error("Failed to delete project", "project", p.ID, "error", err)
		return fmt.Errorf("failed to delete project: %w", err)
	}

	logging.Logger.Info("Project deleted via CLI", "project", p.ID)
	fmt.Printf("Project '%s' deleted successfully\n", project.Name)
	return nil
}

func (p *ProjectsDelCmd) confirmDeletion(project domain.Project) bool {
	fmt.Printf("WARNING: This will delete project '%s' with all its epics, agents, documents and chats\n", project.Name)
	fmt.Print("\nContinue? (y/N): ")
	var response string
	fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		logging.Logger.Info("User cancelled project deletion", "project", p.ID)
		fmt.Println("Cancelled")
		return false
	}
	return true
}
