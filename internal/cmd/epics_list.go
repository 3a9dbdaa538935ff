package cmd

import (
	"context"
	"fmt"
	"os"

	"devboard/internal/domain"
	"devboard/internal/logging"
)

// EpicsListCmd lists the epics of a project
type EpicsListCmd struct {
	ExcludeHidden bool   `help:"Drop epics in hidden statuses together with their descendants"`
	Limit         int    `help:"Maximum number of epics to show" default:"100"`
	Offset        int    `help:"Number of epics to skip"`
	Parent        string `help:"Only list children of this epic"`
	Project       string `help:"Project ID" required:""`
	Query         string `help:"Match title or description" short:"q"`
	Roots         bool   `help:"Only list top-level epics"`
	Status        string `help:"Only list epics in this status"`
	Type          string `help:"Which epics to include" enum:"active,archived,all" default:"all"`
}

// Run executes the list command
func (e *EpicsListCmd) Run(container *Container) error {
	logging.Logger.Info("Executing epics list command", "project", e.Project, "type", e.Type)

	filter := domain.EpicFilter{
		ExcludeMcpHidden: e.ExcludeHidden,
		ProjectID:        e.Project,
		Query:            e.Query,
		RootsOnly:        e.Roots,
		StatusID:         e.Status,
		Type:             domain.EpicListType(e.Type),
		Page:             domain.Page{Limit: e.Limit, Offset: e.Offset},
	}

	var (
		result domain.ListResult[domain.Epic]
		err    error
	)
	if e.Parent != "" {
		result, err = container.Repository.ListSubEpics(context.Background(), e.Parent, filter)
	} else {
		result, err = container.Repository.ListEpics(context.Background(), filter)
	}
	if err != nil {
		return fmt.Errorf("failed to list epics: %w", err)
	}

	if len(result.Items) == 0 {
		fmt.Println("No epics found")
		return nil
	}

	for _, epic := range result.Items {
		indent := ""
		if epic.ParentID != nil && e.Parent == "" {
			indent = "  "
		}
		printEpic(os.Stdout, indent, epic)
	}
	fmt.Printf("\nShowing %d of %d\n", len(result.Items), result.Total)
	return nil
}
