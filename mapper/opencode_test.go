package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/vibetrail/model"
)

func TestMapOpenCodeBasicConversation(t *testing.T) {
	raw := `[
  {"info":{"role":"user","id":"m1","time":{"created":1754038800000}},"parts":[{"type":"text","text":"hi"}]},
  {"info":{"role":"assistant","id":"m2","time":{"created":1754038805000},"modelID":"claude-sonnet-4","providerID":"anthropic"},"parts":[{"type":"text","text":"hello"}]}
]`

	messages := MapOpenCode(raw)
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleHuman, messages[0].Role)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, "2025-08-01T09:00:00Z", messages[0].Timestamp)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)
	assert.Equal(t, "hello", messages[1].Content)
	assert.Equal(t, "claude-sonnet-4", messages[1].Model)
}

func TestMapOpenCodeToolState(t *testing.T) {
	// Results are inline in the part state rather than separate entries.
	raw := `[
  {"info":{"role":"assistant","id":"m1"},"parts":[
    {"type":"reasoning","text":"need the file list"},
    {"type":"text","text":"listing files"},
    {"type":"tool","tool":"bash","callID":"call_1","state":{"status":"completed","input":{"command":"ls"},"output":"main.go"}}
  ]}
]`

	messages := MapOpenCode(raw)
	require.Len(t, messages, 1)

	reply := messages[0]
	assert.Equal(t, "listing files", reply.Content)
	require.Len(t, reply.Thinking, 1)
	assert.Equal(t, "need the file list", reply.Thinking[0].Text)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "bash", reply.ToolCalls[0].Name)
	assert.Contains(t, reply.ToolCalls[0].Input, `"command": "ls"`)
	assert.Equal(t, "main.go", reply.ToolCalls[0].Output)
}

func TestMapOpenCodeErrorState(t *testing.T) {
	raw := `[
  {"info":{"role":"assistant","id":"m1"},"parts":[
    {"type":"tool","tool":"bash","state":{"status":"error","error":"command not found"}}
  ]}
]`

	messages := MapOpenCode(raw)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].ToolCalls, 1)
	assert.Equal(t, model.ErrorPrefix+"command not found", messages[0].ToolCalls[0].Output)
}

func TestMapOpenCodePendingToolKeepsEmptyOutput(t *testing.T) {
	raw := `[
  {"info":{"role":"assistant","id":"m1"},"parts":[
    {"type":"tool","tool":"webfetch","state":{"status":"running","input":{"url":"https://example.com"}}}
  ]}
]`

	messages := MapOpenCode(raw)
	require.Len(t, messages, 1)
	assert.Empty(t, messages[0].ToolCalls[0].Output)
}

func TestMapOpenCodeUnknownPartsIgnored(t *testing.T) {
	raw := `[
  {"info":{"role":"assistant","id":"m1"},"parts":[
    {"type":"step-start"},
    {"type":"text","text":"fine"},
    {"type":"step-finish"}
  ]}
]`

	messages := MapOpenCode(raw)
	require.Len(t, messages, 1)
	assert.Equal(t, "fine", messages[0].Content)
	assert.Empty(t, messages[0].ToolCalls)
}

func TestMapOpenCodeDegenerateInputs(t *testing.T) {
	assert.Empty(t, MapOpenCode(""))
	assert.Empty(t, MapOpenCode("   "))
	assert.Empty(t, MapOpenCode("[]"))
	assert.Empty(t, MapOpenCode(`{"not":"an array"}`))
}

func TestMapOpenCodeIdempotent(t *testing.T) {
	raw := `[
  {"info":{"role":"user","id":"m1"},"parts":[{"type":"text","text":"hi"}]},
  {"info":{"role":"assistant","id":"m2"},"parts":[{"type":"text","text":"hello"}]}
]`
	assert.Equal(t, MapOpenCode(raw), MapOpenCode(raw))
}
