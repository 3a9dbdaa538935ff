package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devboard/internal/domain"
)

func TestRegisterGuest(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "guests")
	other := newProjectFixture(t, repo, "other")
	ctx := context.Background()

	guest, err := repo.RegisterGuest(ctx, domain.RegisterGuestInput{Name: "Codex", ProjectID: f.project.ID, TmuxSessionID: "$1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   domain.RegisterGuestInput
		kind error
	}{
		{
			name: "name differs only by case",
			in:   domain.RegisterGuestInput{Name: "codex", ProjectID: f.project.ID, TmuxSessionID: "$2"},
			kind: domain.ErrConflict,
		},
		{
			name: "tmux session reused in another project",
			in:   domain.RegisterGuestInput{Name: "other", ProjectID: other.project.ID, TmuxSessionID: "$1"},
			kind: domain.ErrConflict,
		},
		{
			name: "blank name",
			in:   domain.RegisterGuestInput{Name: "  ", ProjectID: f.project.ID, TmuxSessionID: "$3"},
			kind: domain.ErrValidation,
		},
		{
			name: "missing project",
			in:   domain.RegisterGuestInput{Name: "x", ProjectID: "nope", TmuxSessionID: "$4"},
			kind: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.RegisterGuest(ctx, tt.in)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	_, err = repo.RegisterGuest(ctx, domain.RegisterGuestInput{Name: "codex", ProjectID: other.project.ID, TmuxSessionID: "$5"})
	require.NoError(t, err, "names are unique per project only")

	byID, err := repo.GetGuest(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Codex", byID.Name)

	found, err := repo.GetGuestByTmuxSession(ctx, "$1")
	require.NoError(t, err)
	assert.Equal(t, guest.ID, found.ID)

	touched, err := repo.TouchGuest(ctx, guest.ID)
	require.NoError(t, err)
	assert.True(t, touched.LastSeenAt.After(guest.LastSeenAt))

	guests, err := repo.ListGuests(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Len(t, guests, 1)

	require.NoError(t, repo.DeleteGuest(ctx, guest.ID))
	assert.ErrorIs(t, repo.DeleteGuest(ctx, guest.ID), domain.ErrNotFound)
	_, err = repo.GetGuestByTmuxSession(ctx, "$1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChat(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "chat")
	other := newProjectFixture(t, repo, "other")
	ctx := context.Background()

	agent := f.agent(t, repo, "worker")
	stranger := other.agent(t, repo, "stranger")

	thread, err := repo.CreateChatThread(ctx, f.project.ID, " standup ")
	require.NoError(t, err)
	assert.Equal(t, "standup", thread.Title)

	message, err := repo.PostChatMessage(ctx, domain.PostChatMessageInput{
		AuthorID:  "user",
		Content:   "status?",
		TargetIDs: []string{agent.ID, agent.ID},
		ThreadID:  thread.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{agent.ID}, message.TargetIDs)
	assert.Equal(t, f.project.ID, message.ProjectID)

	_, err = repo.PostChatMessage(ctx, domain.PostChatMessageInput{Content: "hi", TargetIDs: []string{stranger.ID}, ThreadID: thread.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = repo.PostChatMessage(ctx, domain.PostChatMessageInput{Content: " ", ThreadID: thread.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	t.Run("read receipts are stored once", func(t *testing.T) {
		require.NoError(t, repo.MarkMessageRead(ctx, message.ID, agent.ID))
		require.NoError(t, repo.MarkMessageRead(ctx, message.ID, agent.ID))
		assert.Equal(t, int64(1), countRows(t, repo, "chat_message_reads"))

		assert.ErrorIs(t, repo.MarkMessageRead(ctx, "nope", agent.ID), domain.ErrNotFound)
	})

	t.Run("members join once", func(t *testing.T) {
		require.NoError(t, repo.AddChatMember(ctx, thread.ID, agent.ID))
		require.NoError(t, repo.AddChatMember(ctx, thread.ID, agent.ID))
		assert.Equal(t, int64(1), countRows(t, repo, "chat_members"))
	})

	t.Run("invites stay inside the project", func(t *testing.T) {
		require.NoError(t, repo.InviteToChat(ctx, thread.ID, agent.ID, &message.ID))
		assert.ErrorIs(t, repo.InviteToChat(ctx, thread.ID, stranger.ID, nil), domain.ErrValidation)
	})

	t.Run("activity needs a kind", func(t *testing.T) {
		require.NoError(t, repo.RecordChatActivity(ctx, thread.ID, &agent.ID, "typing"))
		assert.ErrorIs(t, repo.RecordChatActivity(ctx, thread.ID, nil, ""), domain.ErrValidation)
	})

	messages, err := repo.ListChatMessages(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, []string{agent.ID}, messages[0].TargetIDs)

	_, err = repo.ListChatMessages(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectSkills(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "skills")
	ctx := context.Background()

	require.NoError(t, repo.SetProjectSkill(ctx, f.project.ID, "go-review", true))
	require.NoError(t, repo.SetProjectSkill(ctx, f.project.ID, "docs", false))
	require.NoError(t, repo.SetProjectSkill(ctx, f.project.ID, "go-review", false))

	skills, err := repo.ListProjectSkills(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"docs": false, "go-review": false}, skills)
	assert.Equal(t, int64(2), countRows(t, repo, "project_skills"))

	assert.ErrorIs(t, repo.SetProjectSkill(ctx, f.project.ID, " ", true), domain.ErrValidation)
	assert.ErrorIs(t, repo.SetProjectSkill(ctx, "nope", "x", true), domain.ErrNotFound)
}

func TestWatchers(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "watchers")
	ctx := context.Background()

	watcher, err := repo.CreateWatcher(ctx, domain.Watcher{
		Condition:    map[string]any{"pattern": "PASS"},
		Enabled:      true,
		Name:         "tests",
		ProjectID:    f.project.ID,
		TriggerEvent: "tests.passed",
	})
	require.NoError(t, err)
	assert.Equal(t, 5000, watcher.PollIntervalMs)
	assert.Equal(t, 50, watcher.ViewportLines)
	assert.Equal(t, "all", watcher.Scope)

	_, err = repo.CreateWatcher(ctx, domain.Watcher{Name: "bad", ProjectID: f.project.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	watcher.Enabled = false
	watcher.PollIntervalMs = 1000
	updated, err := repo.UpdateWatcher(ctx, watcher)
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, 1000, updated.PollIntervalMs)
	assert.True(t, updated.UpdatedAt.After(watcher.UpdatedAt))

	got, err := repo.GetWatcher(ctx, watcher.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Equal(t, map[string]any{"pattern": "PASS"}, got.Condition)

	listed, err := repo.ListWatchers(ctx, f.project.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "tests", listed[0].Name)

	_, err = repo.UpdateWatcher(ctx, domain.Watcher{ID: "nope", Name: "x", TriggerEvent: "y"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.DeleteWatcher(ctx, watcher.ID))
	assert.ErrorIs(t, repo.DeleteWatcher(ctx, watcher.ID), domain.ErrNotFound)
}

func TestSubscribers_Ordering(t *testing.T) {
	repo := newTestRepo(t)
	f := newProjectFixture(t, repo, "subscribers")
	ctx := context.Background()

	create := func(name string, priority, position int) domain.Subscriber {
		t.Helper()
		s, err := repo.CreateSubscriber(ctx, domain.Subscriber{
			ActionType: "notify",
			EventName:  "epic.done",
			Name:       name,
			Position:   position,
			Priority:   priority,
			ProjectID:  f.project.ID,
		})
		require.NoError(t, err)
		return s
	}
	low := create("low", 0, 0)
	highSecond := create("high-second", 10, 1)
	highFirst := create("high-first", 10, 0)

	subscribers, err := repo.ListSubscribers(ctx, f.project.ID)
	require.NoError(t, err)
	require.Len(t, subscribers, 3)
	assert.Equal(t, []string{highFirst.ID, highSecond.ID, low.ID},
		[]string{subscribers[0].ID, subscribers[1].ID, subscribers[2].ID})

	_, err = repo.CreateSubscriber(ctx, domain.Subscriber{Name: "x", EventName: "y", ProjectID: f.project.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	low.Priority = 20
	low.EventFilter = map[string]any{"status": "done"}
	promoted, err := repo.UpdateSubscriber(ctx, low)
	require.NoError(t, err)
	assert.Equal(t, 20, promoted.Priority)

	subscribers, err = repo.ListSubscribers(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, low.ID, subscribers[0].ID)
	assert.Equal(t, map[string]any{"status": "done"}, subscribers[0].EventFilter)

	require.NoError(t, repo.DeleteSubscriber(ctx, low.ID))
	_, err = repo.GetSubscriber(ctx, low.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
