package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/vibetrail/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trail.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSession(id string) model.Session {
	return model.Session{
		ID:      id,
		Agent:   model.AgentClaude,
		Project: "proj",
		CWD:     "/home/me/proj",
		Summary: "fix the bug",
		Time:    time.Unix(1754038800, 0).UTC(),
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	messages := []model.Message{
		{Role: model.RoleHuman, Content: "hi", Timestamp: "2026-08-01T10:00:00Z"},
		{
			Role:    model.RoleAssistant,
			Content: "hello",
			Model:   "claude-sonnet-4",
			ToolCalls: []model.ToolCall{
				{Name: "Read", Input: `{"file_path": "a.go"}`, Output: "package a"},
			},
			Thinking: []model.ThinkingBlock{{Text: "hmm"}},
		},
	}
	require.NoError(t, s.SaveSession(ctx, testSession("sess-1"), messages, "hi hello package a"))

	loaded, err := s.Messages(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, messages, loaded)

	session, err := s.Session(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, model.AgentClaude, session.Agent)
	assert.Equal(t, "fix the bug", session.Summary)
}

func TestSaveSessionReplacesTranscript(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []model.Message{{Role: model.RoleHuman, Content: "v1"}}
	require.NoError(t, s.SaveSession(ctx, testSession("sess-1"), first, "v1"))

	second := []model.Message{
		{Role: model.RoleHuman, Content: "v1"},
		{Role: model.RoleAssistant, Content: "v2"},
	}
	require.NoError(t, s.SaveSession(ctx, testSession("sess-1"), second, "v1 v2"))

	loaded, err := s.Messages(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "v2", loaded[1].Content)
}

func TestSessionsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := testSession("old")
	older.Time = time.Unix(1000, 0)
	newer := testSession("new")
	newer.Time = time.Unix(2000, 0)
	require.NoError(t, s.SaveSession(ctx, older, nil, ""))
	require.NoError(t, s.SaveSession(ctx, newer, nil, ""))

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[1].ID)
}

func TestSessionNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Session(context.Background(), "ghost")
	assert.ErrorContains(t, err, "not found")
}

func TestCommitLinks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSession(ctx, testSession("sess-1"), nil, ""))

	link := model.CommitLink{
		SHA:         "abc123",
		SessionID:   "sess-1",
		Agent:       model.AgentClaude,
		CommittedAt: time.Unix(1754038900, 0).UTC(),
		Subject:     "fix parser crash",
	}
	require.NoError(t, s.SaveCommitLink(ctx, link))
	// idempotent re-link updates metadata instead of duplicating
	link.Subject = "fix parser crash (amended)"
	require.NoError(t, s.SaveCommitLink(ctx, link))

	bySession, err := s.LinksForSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, "fix parser crash (amended)", bySession[0].Subject)

	byCommit, err := s.LinksForCommit(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, byCommit, 1)
	assert.Equal(t, "sess-1", byCommit[0].SessionID)
}

func TestSearchRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSession(ctx, testSession("sess-1"), nil, "parser crash fixed"))

	rows, err := s.SearchRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sess-1", rows[0].SessionID)
	assert.Equal(t, "parser crash fixed", rows[0].Text)
	assert.Equal(t, "proj", rows[0].Project)
}
