package storage

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devboard/internal/domain"
)

func TestTags_RoundTripAndReuse(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "tags")
	ctx := context.Background()

	first, err := repo.CreateEpic(ctx, domain.CreateEpicInput{
		ProjectID: f.project.ID,
		Tags:      []string{"a", "a", " b "},
		Title:     "first",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, first.Tags)
	assert.Equal(t, int64(2), countRows(t, repo, "tags"))

	second, err := repo.CreateEpic(ctx, domain.CreateEpicInput{
		ProjectID: f.project.ID,
		Tags:      []string{"a"},
		Title:     "second",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, second.Tags)

	prompt, err := repo.CreatePrompt(ctx, domain.CreatePromptInput{
		ProjectID: &f.project.ID,
		Tags:      []string{"b", ""},
		Title:     "style",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, prompt.Tags)

	assert.Equal(t, int64(2), countRows(t, repo, "tags"), "tags are reused within the project")

	other := newProjectFixture(t, repo, "elsewhere")
	_, err = repo.CreateEpic(ctx, domain.CreateEpicInput{ProjectID: other.project.ID, Tags: []string{"a"}, Title: "third"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), countRows(t, repo, "tags"), "another project gets its own tag")
}

func TestTags_ReplaceAll(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "replace")
	ctx := context.Background()

	epic, err := repo.CreateEpic(ctx, domain.CreateEpicInput{ProjectID: f.project.ID, Tags: []string{"x", "y"}, Title: "tagged"})
	require.NoError(t, err)

	updated, err := repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{Tags: &[]string{"y", "z"}}, epic.Version)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "z"}, updated.Tags)

	cleared, err := repo.UpdateEpic(ctx, epic.ID, domain.EpicPatch{Tags: &[]string{}}, updated.Version)
	require.NoError(t, err)
	assert.Empty(t, cleared.Tags)
	assert.Zero(t, countRows(t, repo, "epic_tags"))
}

func TestTags_ProjectScopeWinsOverGlobal(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "scope")
	ctx := context.Background()

	global, err := repo.CreateTag(ctx, nil, "shared")
	require.NoError(t, err)
	assert.Nil(t, global.ProjectID)

	epic, err := repo.CreateEpic(ctx, domain.CreateEpicInput{ProjectID: f.project.ID, Tags: []string{"shared"}, Title: "uses global"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countRows(t, repo, "tags"), "a global tag is reused when the project has none")

	local, err := repo.CreateTag(ctx, &f.project.ID, "local")
	require.NoError(t, err)
	again, err := repo.CreateTag(ctx, &f.project.ID, " local ")
	require.NoError(t, err)
	assert.Equal(t, local.ID, again.ID)

	visible, err := repo.ListTags(ctx, &f.project.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	globals, err := repo.ListTags(ctx, nil)
	require.NoError(t, err)
	require.Len(t, globals, 1)
	assert.Equal(t, global.ID, globals[0].ID)

	renamed, err := repo.UpdateTag(ctx, global.ID, "common")
	require.NoError(t, err)
	assert.Equal(t, "common", renamed.Name)

	tags, err := repo.GetTagsForEntities(ctx, domain.TaggedEpic, []string{epic.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"common"}, tags[epic.ID])

	require.NoError(t, repo.DeleteTag(ctx, global.ID))
	tags, err = repo.GetTagsForEntities(ctx, domain.TaggedEpic, []string{epic.ID})
	require.NoError(t, err)
	assert.Empty(t, tags[epic.ID])

	_, err = repo.GetTag(ctx, global.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadTagNames_ChunksLargeBatches(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "bulk")

	tag, err := repo.CreateTag(context.Background(), &f.project.ID, "bulk")
	require.NoError(t, err)

	const total = 1200
	ts := now()
	epics := make([]EpicModel, total)
	links := make([]map[string]any, total)
	ids := make([]string, total)
	for i := range epics {
		ids[i] = uuid.NewString()
		epics[i] = EpicModel{
			CreatedAt: ts,
			ID:        ids[i],
			ProjectID: f.project.ID,
			StatusID:  f.todo.ID,
			Title:     fmt.Sprintf("bulk %d", i),
			UpdatedAt: ts,
			Version:   1,
		}
		links[i] = map[string]any{"epic_id": ids[i], "tag_id": tag.ID, "created_at": ts}
	}
	require.NoError(t, repo.db.CreateInBatches(epics, 50).Error)
	require.NoError(t, repo.db.Table("epic_tags").CreateInBatches(links, 100).Error)

	counter := &statementCounter{Interface: logger.Discard, match: "FROM epic_tags j"}
	names, err := loadTagNames(repo.db.Session(&gorm.Session{Logger: counter}), epicTags, append(ids, "untagged"))
	require.NoError(t, err)
	assert.Equal(t, 3, counter.count, "1201 owners load in ceil(1201/500) junction queries")

	assert.Len(t, names, total+1)
	assert.Equal(t, []string{"bulk"}, names[ids[0]])
	assert.Equal(t, []string{"bulk"}, names[ids[total-1]])
	assert.Empty(t, names["untagged"])

	viaPort, err := repo.GetTagsForEntities(context.Background(), domain.TaggedEpic, ids)
	require.NoError(t, err)
	assert.Len(t, viaPort, total)
}

// statementCounter counts executed statements whose SQL contains match
type statementCounter struct {
	logger.Interface
	match string
	count int
}

func (c *statementCounter) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	if sql, _ := fc(); strings.Contains(sql, c.match) {
		c.count++
	}
}

func TestGetTagsForEntities_UnknownKind(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetTagsForEntities(context.Background(), domain.TaggedKind("widget"), []string{"x"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListPrompts_FiltersByAllTags(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "prompts")
	ctx := context.Background()

	for _, p := range []struct {
		title string
		tags  []string
	}{
		{"both", []string{"go", "style"}},
		{"only go", []string{"go"}},
		{"none", nil},
	} {
		_, err := repo.CreatePrompt(ctx, domain.CreatePromptInput{ProjectID: &f.project.ID, Tags: p.tags, Title: p.title})
		require.NoError(t, err)
	}
	_, err := repo.CreatePrompt(ctx, domain.CreatePromptInput{Tags: []string{"go"}, Title: "global"})
	require.NoError(t, err)

	result, err := repo.ListPrompts(ctx, domain.PromptFilter{ProjectID: &f.project.ID, Tags: []string{"go", "style"}})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "both", result.Items[0].Title)

	result, err = repo.ListPrompts(ctx, domain.PromptFilter{ProjectID: &f.project.ID, Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)

	globals, err := repo.ListPrompts(ctx, domain.PromptFilter{})
	require.NoError(t, err)
	require.Len(t, globals.Items, 1)
	assert.Equal(t, "global", globals.Items[0].Title)
}

func TestUpdatePrompt_Versioned(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	prompt, err := repo.CreatePrompt(ctx, domain.CreatePromptInput{Title: "draft", Content: "v1"})
	require.NoError(t, err)

	updated, err := repo.UpdatePrompt(ctx, prompt.ID, domain.PromptPatch{Content: ptr("v2")}, prompt.Version)
	require.NoError(t, err)
	assert.Equal(t, prompt.Version+1, updated.Version)
	assert.True(t, updated.UpdatedAt.After(prompt.UpdatedAt))

	_, err = repo.UpdatePrompt(ctx, prompt.ID, domain.PromptPatch{Content: ptr("v3")}, prompt.Version)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, err := repo.GetPrompt(ctx, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", stored.Content)
}
