package githook

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/vibetrail/model"
)

func TestWriteHook(t *testing.T) {
	dir := t.TempDir()

	path, err := writeHook(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "post-commit"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), hookMarker)
	assert.Contains(t, string(content), "vibetrail link")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "hook must be executable")
}

func TestWriteHookIdempotent(t *testing.T) {
	dir := t.TempDir()
	_, err := writeHook(dir)
	require.NoError(t, err)
	_, err = writeHook(dir)
	assert.NoError(t, err)
}

func TestWriteHookRefusesForeignHook(t *testing.T) {
	dir := t.TempDir()
	foreign := filepath.Join(dir, "post-commit")
	require.NoError(t, os.WriteFile(foreign, []byte("#!/bin/sh\necho mine\n"), 0o755))

	_, err := writeHook(dir)
	assert.ErrorContains(t, err, "not installed by vibetrail")

	content, err := os.ReadFile(foreign)
	require.NoError(t, err)
	assert.Contains(t, string(content), "echo mine")
}

func TestMatchWindow(t *testing.T) {
	commit := Commit{SHA: "abc", Time: time.Unix(10000, 0).UTC()}
	sessions := []model.Session{
		{ID: "recent", Time: time.Unix(9900, 0)},     // 100s before: in window
		{ID: "older", Time: time.Unix(9400, 0)},      // 600s before: in window
		{ID: "stale", Time: time.Unix(7000, 0)},      // 50min before: out
		{ID: "just-after", Time: time.Unix(10030, 0)}, // within grace
		{ID: "far-after", Time: time.Unix(10600, 0)}, // out
	}

	matched := Match(commit, sessions, 15*time.Minute)
	require.Len(t, matched, 3)
	assert.Equal(t, "just-after", matched[0].ID)
	assert.Equal(t, "recent", matched[1].ID)
	assert.Equal(t, "older", matched[2].ID)
}

func TestMatchEmpty(t *testing.T) {
	commit := Commit{Time: time.Unix(10000, 0)}
	assert.Empty(t, Match(commit, nil, time.Hour))
}

func TestHeadCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", repo}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		require.NoError(t, cmd.Run())
	}
	run("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "a.txt"), []byte("a\n"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "initial commit")

	commit, err := HeadCommit(context.Background(), repo)
	require.NoError(t, err)
	assert.Len(t, commit.SHA, 40)
	assert.Equal(t, "initial commit", commit.Subject)
	assert.WithinDuration(t, time.Now(), commit.Time, time.Minute)
}
