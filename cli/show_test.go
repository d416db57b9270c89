package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/vibetrail/model"
)

func TestFindSession(t *testing.T) {
	sessions := []model.Session{
		{ID: "abcd1234efgh5678", ShortID: "abcd..5678"},
		{ID: "abxy9999zzzz0000", ShortID: "abxy..0000"},
		{ID: "other", ShortID: "other"},
	}

	s, ok := findSession(sessions, "abcd1234efgh5678")
	require.True(t, ok)
	assert.Equal(t, "abcd1234efgh5678", s.ID)

	s, ok = findSession(sessions, "abxy..0000")
	require.True(t, ok)
	assert.Equal(t, "abxy9999zzzz0000", s.ID)

	s, ok = findSession(sessions, "abcd")
	require.True(t, ok, "unique prefix matches")
	assert.Equal(t, "abcd1234efgh5678", s.ID)

	_, ok = findSession(sessions, "ab")
	assert.False(t, ok, "ambiguous prefix does not match")

	_, ok = findSession(sessions, "missing")
	assert.False(t, ok)
}

func TestRenderTranscriptMarkdown(t *testing.T) {
	session := model.Session{ID: "s1", ShortID: "s1", Agent: model.AgentClaude}
	messages := []model.Message{
		{Role: model.RoleHuman, Content: "add a flag"},
		{
			Role:     model.RoleAssistant,
			Content:  "Added it.",
			Model:    "some-model",
			Thinking: []model.ThinkingBlock{{Text: "check the parser"}},
			ToolCalls: []model.ToolCall{
				{Name: "edit_file", Input: "{}", Output: "ok"},
			},
		},
	}

	out := renderTranscript(session, messages)
	assert.Contains(t, out, "Human")
	assert.Contains(t, out, "add a flag")
	assert.Contains(t, out, "Assistant")
	assert.Contains(t, out, "Added it.")
	assert.Contains(t, out, "edit_file")
}
