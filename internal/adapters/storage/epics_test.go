package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devboard/internal/domain"
)

func TestCreateEpic_DepthLimit(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "depth")

	e1 := f.epic(t, repo, "E1", nil, "")
	e2 := f.epic(t, repo, "E2", &e1.ID, "")
	require.NotNil(t, e2.ParentID)
	assert.Equal(t, e1.ID, *e2.ParentID)

	_, err := repo.CreateEpic(context.Background(), domain.CreateEpicInput{
		ParentID:  &e2.ID,
		ProjectID: f.project.ID,
		Title:     "E3",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(2), countRows(t, repo, "epics"))
}

func TestUpdateEpic_HierarchyRules(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "hierarchy")
	other := newProjectFixture(t, repo, "other")
	ctx := context.Background()

	root := f.epic(t, repo, "root", nil, "")
	child := f.epic(t, repo, "child", &root.ID, "")
	loner := f.epic(t, repo, "loner", nil, "")
	foreign := other.epic(t, repo, "foreign", nil, "")

	tests := []struct {
		name     string
		id       string
		parentID string
		wantErr  error
	}{
		{"own parent", loner.ID, loner.ID, domain.ErrValidation},
		{"under own child", root.ID, child.ID, domain.ErrValidation},
		{"epic with children", root.ID, loner.ID, domain.ErrValidation},
		{"under a child epic", loner.ID, child.ID, domain.ErrValidation},
		{"parent in another project", loner.ID, foreign.ID, domain.ErrValidation},
		{"missing parent", loner.ID, "missing", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, err := repo.GetEpic(ctx, tt.id)
			require.NoError(t, err)

			_, err = repo.UpdateEpic(ctx, tt.id, domain.EpicPatch{ParentID: ptr(tt.parentID)}, current.Version)

			assert.ErrorIs(t, err, tt.wantErr)
			after, err := repo.GetEpic(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, current, after)
		})
	}

	moved, err := repo.UpdateEpic(ctx, loner.ID, domain.EpicPatch{ParentID: &root.ID}, loner.Version)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, root.ID, *moved.ParentID)

	// Every stored parent is a root
	var violations int64
	require.NoError(t, repo.db.Table("epics AS c").
		Joins("JOIN epics p ON p.id = c.parent_id").
		Where("p.parent_id IS NOT NULL").
		Count(&violations).Error)
	assert.Zero(t, violations)
}

func TestUpdateEpic_OptimisticConcurrency(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "occ")
	ctx := context.Background()

	epic := f.epic(t, repo, "shared", nil, "")
	require.Equal(t, 1, epic.Version)

	readA, err := repo.GetEpic(ctx, epic.ID)
	require.NoError(t, err)
	readB, err := repo.GetEpic(ctx, epic.ID)
	require.NoError(t, err)

	updatedA, err := repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{Title: ptr("from A")}, readA.Version)
	require.NoError(t, err)
	assert.Equal(t, 2, updatedA.Version)

	_, err = repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{Title: ptr("from B")}, readB.Version)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	var conflict *domain.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 2, conflict.Actual)

	stored, err := repo.GetEpic(ctx, epic.ID)
	require.NoError(t, err)
	assert.Equal(t, updatedA, stored, "a rejected update must not write")

	updatedB, err := repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{Title: ptr("from B")}, updatedA.Version)
	require.NoError(t, err)
	assert.Equal(t, 3, updatedB.Version)
	assert.Equal(t, "from B", updatedB.Title)
}

func TestUpdateEpic_VersionAndTimestampAdvance(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "advance")
	ctx := context.Background()

	epic := f.epic(t, repo, "tick", nil, "")
	for i := 0; i < 5; i++ {
		updated, err := repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{
			Description: ptr(fmt.Sprintf("pass %d", i)),
		}, epic.Version)
		require.NoError(t, err)

		assert.Equal(t, epic.Version+1, updated.Version)
		assert.True(t, updated.UpdatedAt.After(epic.UpdatedAt), "updatedAt must strictly increase")
		epic = updated
	}

	forced, err := repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{Title: ptr("forced")}, domain.AnyVersion)
	require.NoError(t, err)
	assert.Equal(t, epic.Version+1, forced.Version)
}

func TestUpdateEpic_AgentAndStatusValidation(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "refs")
	other := newProjectFixture(t, repo, "elsewhere")
	ctx := context.Background()

	epic := f.epic(t, repo, "work", nil, "")
	assert.Equal(t, f.todo.ID, epic.StatusID, "first status by position is the default")

	foreignAgent := other.agent(t, repo, "stranger")
	_, err := repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{AgentID: &foreignAgent.ID}, epic.Version)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{StatusID: &other.done.ID}, epic.Version)
	assert.ErrorIs(t, err, domain.ErrValidation)

	agent := f.agent(t, repo, "worker")
	assigned, err := repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{AgentID: &agent.ID, StatusID: &f.done.ID}, epic.Version)
	require.NoError(t, err)
	require.NotNil(t, assigned.AgentID)
	assert.Equal(t, agent.ID, *assigned.AgentID)
	assert.Equal(t, f.done.ID, assigned.StatusID)

	cleared, err := repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{ClearAgent: true}, assigned.Version)
	require.NoError(t, err)
	assert.Nil(t, cleared.AgentID)
}

func TestListEpics_ExcludesHiddenSubtrees(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "hidden")
	ctx := context.Background()

	a := f.epic(t, repo, "A", nil, f.hidden.ID)
	b := f.epic(t, repo, "B", &a.ID, f.todo.ID)
	visible := f.epic(t, repo, "visible", nil, f.todo.ID)

	all, err := repo.ListEpics(ctx, domain.EpicFilter{ProjectID: f.project.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	filtered, err := repo.ListEpics(ctx, domain.EpicFilter{ProjectID: f.project.ID, ExcludeMcpHidden: true})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, visible.ID, filtered.Items[0].ID)
	assert.Equal(t, int64(1), filtered.Total)

	children, err := repo.ListChildrenForParents(ctx, f.project.ID, []string{a.ID}, 10, domain.EpicFilter{ExcludeMcpHidden: true})
	require.NoError(t, err)
	assert.Empty(t, children[a.ID])

	children, err = repo.ListChildrenForParents(ctx, f.project.ID, []string{a.ID}, 10, domain.EpicFilter{})
	require.NoError(t, err)
	require.Len(t, children[a.ID], 1)
	assert.Equal(t, b.ID, children[a.ID][0].ID)
}

func TestListEpics_ArchivedType(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "archive")
	ctx := context.Background()

	archived, err := repo.CreateStatus(ctx, domain.CreateStatusInput{ProjectID: f.project.ID, Label: " Archived "})
	require.NoError(t, err)

	old := f.epic(t, repo, "old", nil, archived.ID)
	current := f.epic(t, repo, "current", nil, f.todo.ID)

	tests := []struct {
		listType domain.EpicListType
		want     []string
	}{
		{domain.EpicListActive, []string{current.ID}},
		{domain.EpicListArchived, []string{old.ID}},
		{domain.EpicListAll, []string{current.ID, old.ID}},
		{"", []string{current.ID, old.ID}},
	}

	for _, tt := range tests {
		t.Run(string(tt.listType), func(t *testing.T) {
			result, err := repo.ListEpics(ctx, domain.EpicFilter{ProjectID: f.project.ID, Type: tt.listType})
			require.NoError(t, err)

			ids := make([]string, len(result.Items))
			for i, e := range result.Items {
				ids[i] = e.ID
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestListEpics_Paging(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "paging")
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		f.epic(t, repo, fmt.Sprintf("epic %d", i), nil, "")
	}

	page, err := repo.ListEpics(ctx, domain.EpicFilter{ProjectID: f.project.ID, Page: domain.Page{Limit: 3, Offset: 6}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Limit)

	search, err := repo.ListEpics(ctx, domain.EpicFilter{ProjectID: f.project.ID, Query: "epic 4"})
	require.NoError(t, err)
	require.Len(t, search.Items, 1)
	assert.Equal(t, "epic 4", search.Items[0].Title)
}

func TestListChildrenForParents_TopN(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "topn")
	ctx := context.Background()

	busy := f.epic(t, repo, "busy", nil, "")
	quiet := f.epic(t, repo, "quiet", nil, "")
	empty := f.epic(t, repo, "empty", nil, "")

	for i := 0; i < 6; i++ {
		f.epic(t, repo, fmt.Sprintf("busy child %d", i), &busy.ID, "")
		time.Sleep(time.Millisecond)
	}
	f.epic(t, repo, "quiet child", &quiet.ID, "")

	parents := []string{busy.ID, quiet.ID, empty.ID, "unknown", busy.ID}
	first, err := repo.ListChildrenForParents(ctx, f.project.ID, parents, 4, domain.EpicFilter{})
	require.NoError(t, err)

	assert.Len(t, first, 4)
	assert.Len(t, first[busy.ID], 4)
	assert.Len(t, first[quiet.ID], 1)
	assert.NotNil(t, first[empty.ID])
	assert.Empty(t, first[empty.ID])
	assert.Empty(t, first["unknown"])

	assert.Equal(t, "busy child 5", first[busy.ID][0].Title, "most recently updated first")
	for i := 1; i < len(first[busy.ID]); i++ {
		assert.False(t, first[busy.ID][i].UpdatedAt.After(first[busy.ID][i-1].UpdatedAt))
	}

	second, err := repo.ListChildrenForParents(ctx, f.project.ID, parents, 4, domain.EpicFilter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	none, err := repo.ListChildrenForParents(ctx, f.project.ID, []string{busy.ID}, 0, domain.EpicFilter{})
	require.NoError(t, err)
	assert.Empty(t, none[busy.ID])
}

func TestListSubEpics(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "subs")
	ctx := context.Background()

	parent := f.epic(t, repo, "parent", nil, "")
	f.epic(t, repo, "one", &parent.ID, "")
	f.epic(t, repo, "two", &parent.ID, f.done.ID)

	result, err := repo.ListSubEpics(ctx, parent.ID, domain.EpicFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)

	result, err = repo.ListSubEpics(ctx, parent.ID, domain.EpicFilter{StatusID: f.done.ID})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "two", result.Items[0].Title)

	_, err = repo.ListSubEpics(ctx, "missing", domain.EpicFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteEpic_RemovesDependents(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "delete")
	ctx := context.Background()

	parent, err := repo.CreateEpic(ctx, domain.CreateEpicInput{ProjectID: f.project.ID, Title: "parent", Tags: []string{"x"}})
	require.NoError(t, err)
	child := f.epic(t, repo, "child", &parent.ID, "")
	_, err = repo.CreateRecord(ctx, domain.CreateRecordInput{EpicID: child.ID, Type: "note", Tags: []string{"y"}})
	require.NoError(t, err)
	_, err = repo.CreateEpicComment(ctx, parent.ID, "alice", "looks good")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteEpic(ctx, parent.ID))

	for _, table := range []string{"epics", "records", "record_tags", "epic_tags", "epic_comments"} {
		assert.Zero(t, countRows(t, repo, table), table)
	}
	assert.ErrorIs(t, repo.DeleteEpic(ctx, parent.ID), domain.ErrNotFound)
}
