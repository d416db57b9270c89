package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/vibetrail/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanClaude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "-home-me-proj", "abcd1234-5678-90ab-cdef-001122334455.jsonl"),
		`{"type":"user","sessionId":"abcd1234-5678-90ab-cdef-001122334455","cwd":"/home/me/proj","uuid":"u1","message":{"role":"user","content":"fix the bug"}}
{"type":"assistant","uuid":"a1","parentUuid":"u1","message":{"id":"msg_1","role":"assistant","content":[{"type":"text","text":"looking"}]}}`)
	// a snapshot-only file has no session id and is skipped
	writeFile(t, filepath.Join(dir, "-home-me-proj", "broken.jsonl"), `{"type":"file-history-snapshot"}`)

	sessions := ScanClaude(dir)
	require.Len(t, sessions, 1)

	s := sessions[0]
	assert.Equal(t, "abcd1234-5678-90ab-cdef-001122334455", s.ID)
	assert.Equal(t, "abcd..4455", s.ShortID)
	assert.Equal(t, model.AgentClaude, s.Agent)
	assert.Equal(t, "proj", s.Project)
	assert.Equal(t, "fix the bug", s.Summary)
}

func TestScanClaudeSkipsSystemSummary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "p", "s.jsonl"),
		`{"type":"user","sessionId":"sess-1","cwd":"/w","message":{"role":"user","content":"<command-name>/clear</command-name>"}}
{"type":"user","uuid":"u2","message":{"role":"user","content":"real question"}}`)

	sessions := ScanClaude(dir)
	require.Len(t, sessions, 1)
	assert.Equal(t, "real question", sessions[0].Summary)
}

func TestScanPi(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "proj", "2026-08-02.jsonl"),
		`{"type":"session","version":3,"id":"pi-sess-1","timestamp":"2026-08-02T09:00:00Z","cwd":"/home/me/proj"}
{"type":"message","id":"e1","message":{"role":"user","content":"add tests"}}`)

	sessions := ScanPi(dir)
	require.Len(t, sessions, 1)
	assert.Equal(t, "pi-sess-1", sessions[0].ID)
	assert.Equal(t, model.AgentPi, sessions[0].Agent)
	assert.Equal(t, "proj", sessions[0].Project)
	assert.Equal(t, "add tests", sessions[0].Summary)
}

func TestScanOpenCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ses_42.json"),
		`[{"info":{"role":"user","sessionID":"ses_42","cwd":"/home/me/app"},"parts":[{"type":"text","text":"refactor the parser"}]}]`)
	writeFile(t, filepath.Join(dir, "garbage.json"), `{"not":"an array"}`)

	sessions := ScanOpenCode(dir)
	require.Len(t, sessions, 1)
	assert.Equal(t, "ses_42", sessions[0].ID)
	assert.Equal(t, model.AgentOpenCode, sessions[0].Agent)
	assert.Equal(t, "app", sessions[0].Project)
	assert.Equal(t, "refactor the parser", sessions[0].Summary)
}

func TestScanAllMissingDirs(t *testing.T) {
	sessions := ScanAll(Dirs{Claude: "/nonexistent", Pi: "", OpenCode: "/also/gone"})
	assert.Empty(t, sessions)
}

func TestSummarizeTruncates(t *testing.T) {
	long := make([]rune, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'x')
	}
	got := summarize(string(long))
	assert.LessOrEqual(t, len([]rune(got)), summaryLimit)
	assert.True(t, len(got) > 0)
}
