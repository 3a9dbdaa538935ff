package storage

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"devboard/internal/logging"
	"devboard/internal/metrics"
)

// Subqueries over the rows owned by the project bound to @project
const (
	projectThreads  = "SELECT id FROM chat_threads WHERE project_id = @project"
	projectMessages = "SELECT id FROM chat_messages WHERE project_id = @project OR thread_id IN (" + projectThreads + ")"
	projectAgents   = "SELECT id FROM agents WHERE project_id = @project"
	projectSessions = "SELECT id FROM sessions WHERE project_id = @project OR agent_id IN (" + projectAgents + ")"
	projectReviews  = "SELECT id FROM reviews WHERE project_id = @project"
	projectEpics    = "SELECT id FROM epics WHERE project_id = @project"
	projectRecords  = "SELECT id FROM records WHERE epic_id IN (" + projectEpics + ")"
	projectTags     = "SELECT id FROM tags WHERE project_id = @project"
	projectPrompts  = "SELECT id FROM prompts WHERE project_id = @project"
	projectProfiles = "SELECT id FROM agent_profiles WHERE project_id = @project"
)

type cascadeStep struct {
	table string
	query string
}

// projectCascade deletes everything a project owns, deepest rows first.
// Each step only removes rows no later step still references.
var projectCascade = []cascadeStep{
	{"chat_message_reads", "DELETE FROM chat_message_reads WHERE message_id IN (" + projectMessages + ")"},
	{"chat_message_targets", "DELETE FROM chat_message_targets WHERE message_id IN (" + projectMessages + ") OR agent_id IN (" + projectAgents + ")"},
	{"chat_invites", "DELETE FROM chat_invites WHERE thread_id IN (" + projectThreads + ") OR message_id IN (" + projectMessages + ") OR agent_id IN (" + projectAgents + ")"},
	{"chat_activities", "DELETE FROM chat_activities WHERE thread_id IN (" + projectThreads + ") OR agent_id IN (" + projectAgents + ")"},
	{"chat_members", "DELETE FROM chat_members WHERE thread_id IN (" + projectThreads + ")"},
	{"chat_messages", "DELETE FROM chat_messages WHERE project_id = @project OR thread_id IN (" + projectThreads + ")"},
	{"chat_threads", "DELETE FROM chat_threads WHERE project_id = @project"},
	{"session_transcripts", "DELETE FROM session_transcripts WHERE session_id IN (" + projectSessions + ")"},
	{"sessions", "DELETE FROM sessions WHERE project_id = @project OR agent_id IN (" + projectAgents + ")"},
	{"review_comment_targets", "DELETE FROM review_comment_targets WHERE comment_id IN (SELECT id FROM review_comments WHERE review_id IN (" + projectReviews + ")) OR agent_id IN (" + projectAgents + ")"},
	{"review_comments", "DELETE FROM review_comments WHERE review_id IN (" + projectReviews + ")"},
	{"reviews", "DELETE FROM reviews WHERE project_id = @project"},
	{"watchers", "DELETE FROM watchers WHERE project_id = @project"},
	{"subscribers", "DELETE FROM subscribers WHERE project_id = @project"},
	{"epic_comments", "DELETE FROM epic_comments WHERE epic_id IN (" + projectEpics + ")"},
	{"record_tags", "DELETE FROM record_tags WHERE record_id IN (" + projectRecords + ") OR tag_id IN (" + projectTags + ")"},
	{"records", "DELETE FROM records WHERE epic_id IN (" + projectEpics + ")"},
	{"epic_tags", "DELETE FROM epic_tags WHERE epic_id IN (" + projectEpics + ") OR tag_id IN (" + projectTags + ")"},
	{"epics", "DELETE FROM epics WHERE project_id = @project"},
	{"document_tags", "DELETE FROM document_tags WHERE document_id IN (SELECT id FROM documents WHERE project_id = @project) OR tag_id IN (" + projectTags + ")"},
	{"documents", "DELETE FROM documents WHERE project_id = @project"},
	{"prompt_tags", "DELETE FROM prompt_tags WHERE prompt_id IN (" + projectPrompts + ") OR tag_id IN (" + projectTags + ")"},
	{"profile_prompts", "DELETE FROM profile_prompts WHERE prompt_id IN (" + projectPrompts + ")"},
	{"prompts", "DELETE FROM prompts WHERE project_id = @project"},
	{"agents", "DELETE FROM agents WHERE project_id = @project"},
	{"profile_prompts", "DELETE FROM profile_prompts WHERE profile_id IN (" + projectProfiles + ")"},
	{"agent_profiles", "DELETE FROM agent_profiles WHERE project_id = @project"},
	{"tags", "DELETE FROM tags WHERE project_id = @project"},
	{"statuses", "DELETE FROM statuses WHERE project_id = @project"},
	{"guests", "DELETE FROM guests WHERE project_id = @project"},
	{"project_skills", "DELETE FROM project_skills WHERE project_id = @project"},
	{"projects", "DELETE FROM projects WHERE id = @project"},
}

// DeleteProject removes a project and every row that depends on it in one
// transaction.
func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	deleted := make(map[string]int64, len(projectCascade))

	err := r.transact(ctx, func(tx *gorm.DB) error {
		clear(deleted)
		if err := requireProject(tx, id); err != nil {
			return err
		}

		for _, step := range projectCascade {
			res := tx.Exec(step.query, sql.Named("project", id))
			if res.Error != nil {
				return fmt.Errorf("failed to delete %s: %w", step.table, res.Error)
			}
			deleted[step.table] += res.RowsAffected
			logging.Logger.Debug("Cascade step", "project", id, "table", step.table, "rows", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for table, rows := range deleted {
		metrics.CascadeDeletedRows.WithLabelValues(table).Add(float64(rows))
	}
	logging.Logger.Info("Project deleted", "project", id)
	return nil
}
