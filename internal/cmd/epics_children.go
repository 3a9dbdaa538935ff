package cmd

import (
	"context"
	"fmt"
	"os"

	"devboard/internal/domain"
	"devboard/internal/logging"
)

// EpicsChildrenCmd shows the first N children of each given parent
type EpicsChildrenCmd struct {
	ExcludeHidden bool     `help:"Drop epics in hidden statuses together with their descendants"`
	Limit         int      `help:"Children to show per parent" default:"5"`
	Parents       []string `arg:"" help:"Parent epic IDs"`
	Project       string   `help:"Project ID" required:""`
	Type          string   `help:"Which epics to include" enum:"active,archived,all" default:"all"`
}

// Run executes the children command
func (e *EpicsChildrenCmd) Run(container *Container) error {
	logging.Logger.Info("Executing epics children command", "project", e.Project, "parents", len(e.Parents), "limit", e.Limit)

	children, err := container.Repository.ListChildrenForParents(context.Background(), e.Project, e.Parents, e.Limit, domain.EpicFilter{
		ExcludeMcpHidden: e.ExcludeHidden,
		ProjectID:        e.Project,
		Type:             domain.EpicListType(e.Type),
	})
	if err != nil {
		return fmt.Errorf("failed to list children: %w", err)
	}

	for _, parentID := range e.Parents {
		fmt.Printf("%s:\n", parentID)
		if len(children[parentID]) == 0 {
			fmt.Println("  (none)")
			continue
		}
		for _, child := range children[parentID] {
			printEpic(os.Stdout, "  ", child)
		}
	}
	return nil
}
