package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"devboard/internal/domain"
	"devboard/internal/logging"
)

// ProjectsListCmd lists projects
type ProjectsListCmd struct {
	Format    string `help:"Output format: table or json" enum:"table,json" default:"table"`
	Limit     int    `help:"Maximum number of projects to show" default:"100"`
	Offset    int    `help:"Number of projects to skip"`
	Templates bool   `help:"Only show projects marked as templates"`
}

// Run executes the list command
func (p *ProjectsListCmd) Run(container *Container) error {
	logging.Logger.Info("Executing projects list command", "limit", p.Limit, "offset", p.Offset)

	filter := domain.ProjectFilter{Page: domain.Page{Limit: p.Limit, Offset: p.Offset}}
	if p.Templates {
		isTemplate := true
		filter.IsTemplate = &isTemplate
	}

	result, err := container.Repository.ListProjects(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if p.Format == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(result.Items) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROOT PATH\tTEMPLATE\tUPDATED")
	for _, project := range result.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
			project.ID,
			project.Name,
			project.RootPath,
			project.IsTemplate,
			project.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nShowing %d of %d\n", len(result.Items), result.Total)
	return nil
}
