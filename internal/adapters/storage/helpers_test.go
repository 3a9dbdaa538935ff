package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"devboard/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "devboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// projectFixture is a project with a todo, a done and a hidden status
type projectFixture struct {
	project domain.Project
	todo    domain.Status
	done    domain.Status
	hidden  domain.Status
}

func newProjectFixture(t *testing.T, repo *SQLiteRepository, name string) projectFixture {
	t.Helper()
	ctx := context.Background()

	project, err := repo.CreateProject(ctx, domain.CreateProjectInput{
		Name:     name,
		RootPath: filepath.Join("/work", name),
	})
	require.NoError(t, err)

	todo, err := repo.CreateStatus(ctx, domain.CreateStatusInput{ProjectID: project.ID, Label: "Todo"})
	require.NoError(t, err)
	done, err := repo.CreateStatus(ctx, domain.CreateStatusInput{ProjectID: project.ID, Label: "Done"})
	require.NoError(t, err)
	hidden, err := repo.CreateStatus(ctx, domain.CreateStatusInput{ProjectID: project.ID, Label: "Parked", McpHidden: true})
	require.NoError(t, err)

	return projectFixture{project: project, todo: todo, done: done, hidden: hidden}
}

func (f projectFixture) epic(t *testing.T, repo *SQLiteRepository, title string, parentID *string, statusID string) domain.Epic {
	t.Helper()
	epic, err := repo.CreateEpic(context.Background(), domain.CreateEpicInput{
		ParentID:  parentID,
		ProjectID: f.project.ID,
		StatusID:  statusID,
		Title:     title,
	})
	require.NoError(t, err)
	return epic
}

func (f projectFixture) agent(t *testing.T, repo *SQLiteRepository, name string) domain.Agent {
	t.Helper()
	ctx := context.Background()
	profile, err := repo.CreateAgentProfile(ctx, domain.CreateAgentProfileInput{
		Name:       name + " profile",
		ProjectID:  &f.project.ID,
		ProviderID: "anthropic",
	})
	require.NoError(t, err)
	agent, err := repo.CreateAgent(ctx, domain.CreateAgentInput{
		Name:      name,
		ProfileID: profile.ID,
		ProjectID: f.project.ID,
	})
	require.NoError(t, err)
	return agent
}

func countRows(t *testing.T, repo *SQLiteRepository, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, repo.db.Table(table).Count(&n).Error)
	return n
}
