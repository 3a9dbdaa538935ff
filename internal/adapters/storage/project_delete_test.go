package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devboard/internal/domain"
	"devboard/internal/logging"
	"devboard/internal/metrics"
)

// populateProject creates at least one row in every table a project owns
func populateProject(t *testing.T, repo *SQLiteRepository, f projectFixture) {
	t.Helper()
	ctx := context.Background()
	projectID := f.project.ID

	agent := f.agent(t, repo, "builder")

	root, err := repo.CreateEpic(ctx, domain.CreateEpicInput{ProjectID: projectID, Title: "root", Tags: []string{"core"}, AgentID: &agent.ID})
	require.NoError(t, err)
	child := f.epic(t, repo, "child", &root.ID, f.done.ID)
	_, err = repo.CreateEpicComment(ctx, root.ID, "alice", "first!")
	require.NoError(t, err)
	_, err = repo.CreateRecord(ctx, domain.CreateRecordInput{EpicID: child.ID, Type: "note", Data: map[string]any{"k": "v"}, Tags: []string{"data"}})
	require.NoError(t, err)

	prompt, err := repo.CreatePrompt(ctx, domain.CreatePromptInput{ProjectID: &projectID, Title: "style", Tags: []string{"docs"}})
	require.NoError(t, err)
	require.NoError(t, repo.SetProfilePrompts(ctx, agent.ProfileID, []string{prompt.ID}))

	_, err = repo.CreateDocument(ctx, domain.CreateDocumentInput{ProjectID: &projectID, Title: "Readme", Tags: []string{"docs"}})
	require.NoError(t, err)

	review, err := repo.CreateReview(ctx, domain.CreateReviewInput{ProjectID: projectID, Title: "review", EpicID: &root.ID})
	require.NoError(t, err)
	_, err = repo.CreateReviewComment(ctx, domain.CreateReviewCommentInput{ReviewID: review.ID, Content: "nit", TargetAgentIDs: []string{agent.ID}})
	require.NoError(t, err)

	_, err = repo.RegisterGuest(ctx, domain.RegisterGuestInput{ProjectID: projectID, Name: "visitor", TmuxSessionID: "tmux-" + projectID})
	require.NoError(t, err)

	_, err = repo.CreateWatcher(ctx, domain.Watcher{ProjectID: projectID, Name: "idle", TriggerEvent: "idle"})
	require.NoError(t, err)
	_, err = repo.CreateSubscriber(ctx, domain.Subscriber{ProjectID: projectID, Name: "notify", EventName: "idle", ActionType: "notify"})
	require.NoError(t, err)

	session, err := repo.CreateSession(ctx, domain.StartSessionInput{AgentID: agent.ID, EpicID: &root.ID, TmuxSessionID: "s1"})
	require.NoError(t, err)
	require.NoError(t, repo.AppendTranscript(ctx, session.ID, "hello"))

	thread, err := repo.CreateChatThread(ctx, projectID, "general")
	require.NoError(t, err)
	msg, err := repo.PostChatMessage(ctx, domain.PostChatMessageInput{ThreadID: thread.ID, AuthorID: "alice", Content: "hi", TargetIDs: []string{agent.ID}})
	require.NoError(t, err)
	require.NoError(t, repo.MarkMessageRead(ctx, msg.ID, agent.ID))
	require.NoError(t, repo.AddChatMember(ctx, thread.ID, agent.ID))
	require.NoError(t, repo.InviteToChat(ctx, thread.ID, agent.ID, &msg.ID))
	require.NoError(t, repo.RecordChatActivity(ctx, thread.ID, &agent.ID, "typing"))

	require.NoError(t, repo.SetProjectSkill(ctx, projectID, "git", true))
}

func TestDeleteProject_Cascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doomed := newProjectFixture(t, repo, "doomed")
	populateProject(t, repo, doomed)

	survivor := newProjectFixture(t, repo, "survivor")
	kept := survivor.epic(t, repo, "kept", nil, "")
	globalPrompt, err := repo.CreatePrompt(ctx, domain.CreatePromptInput{Title: "global", Tags: []string{"shared"}})
	require.NoError(t, err)

	for _, step := range projectCascade {
		if step.table == "projects" || step.table == "statuses" || step.table == "epics" ||
			step.table == "prompts" || step.table == "prompt_tags" || step.table == "tags" {
			continue
		}
		require.Positive(t, countRows(t, repo, step.table), "fixture should populate %s", step.table)
	}

	before := testutil.ToFloat64(metrics.CascadeDeletedRows.WithLabelValues("epics"))

	require.NoError(t, repo.DeleteProject(ctx, doomed.project.ID))

	for _, step := range projectCascade {
		switch step.table {
		case "projects", "statuses", "epics", "prompts", "prompt_tags", "tags":
			continue
		}
		assert.Zero(t, countRows(t, repo, step.table), "rows left in %s", step.table)
	}

	var leftover int64
	for _, table := range []string{"statuses", "epics", "prompts", "tags", "agents", "agent_profiles", "documents", "reviews", "guests", "watchers", "subscribers", "sessions", "chat_threads", "chat_messages", "project_skills"} {
		var n int64
		require.NoError(t, repo.db.Table(table).Where("project_id = ?", doomed.project.ID).Count(&n).Error)
		leftover += n
	}
	assert.Zero(t, leftover)

	_, err = repo.GetProject(ctx, doomed.project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The other project and global rows are untouched
	_, err = repo.GetEpic(ctx, kept.ID)
	assert.NoError(t, err)
	statuses, err := repo.ListStatuses(ctx, survivor.project.ID)
	require.NoError(t, err)
	assert.Len(t, statuses, 3)
	stored, err := repo.GetPrompt(ctx, globalPrompt.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, stored.Tags)

	assert.Equal(t, before+2, testutil.ToFloat64(metrics.CascadeDeletedRows.WithLabelValues("epics")))
}

func TestDeleteProject_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.DeleteProject(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteProject_LogsEveryStep(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "logged")

	var buf bytes.Buffer
	logging.SetOutput(&buf, slog.LevelDebug)
	t.Cleanup(func() { logging.SetOutput(io.Discard, slog.LevelError) })

	require.NoError(t, repo.DeleteProject(context.Background(), f.project.ID))

	out := buf.String()
	assert.Equal(t, len(projectCascade), strings.Count(out, `"msg":"Cascade step"`))
	assert.Contains(t, out, `"table":"statuses","rows":3`)
	assert.Contains(t, out, `"msg":"Project deleted"`)
}
