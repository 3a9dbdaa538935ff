package cmd

import (
	"fmt"
	"io"
	"strings"

	"devboard/internal/domain"
)

// EpicsCmd browses epics
type EpicsCmd struct {
	Children EpicsChildrenCmd `cmd:"children" help:"Show the first children of several parents at once"`
	List     EpicsListCmd     `cmd:"list" help:"List epics of a project" default:"1"`
}

func printEpic(w io.Writer, indent string, epic domain.Epic) {
	tags := ""
	if len(epic.Tags) > 0 {
		tags = " [" + strings.Join(epic.Tags, ", ") + "]"
	}
	fmt.Fprintf(w, "%s%s  %s  (v%d)%s\n", indent, epic.ID, epic.Title, epic.Version, tags)
}
