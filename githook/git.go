// Package githook installs the post-commit hook and links commits to
// the sessions that were active when they were made.
package githook

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Commit is the metadata needed to link a commit to sessions.
type Commit struct {
	SHA     string
	Subject string
	Time    time.Time
}

// HeadCommit reads the repository's HEAD commit.
func HeadCommit(ctx context.Context, repoRoot string) (Commit, error) {
	// unit separator keeps subjects with odd characters intact
	out, err := runGit(ctx, repoRoot, "log", "-1", "--format=%H%x1f%s%x1f%ct")
	if err != nil {
		return Commit{}, err
	}

	parts := strings.SplitN(strings.TrimSpace(out), "\x1f", 3)
	if len(parts) != 3 {
		return Commit{}, fmt.Errorf("githook: unexpected git log output: %q", out)
	}
	seconds, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("githook: parsing commit time %q: %w", parts[2], err)
	}

	return Commit{
		SHA:     parts[0],
		Subject: parts[1],
		Time:    time.Unix(seconds, 0).UTC(),
	}, nil
}

// hooksDir resolves the repository's hooks directory, which lives
// outside the worktree for linked worktrees and custom core.hooksPath.
func hooksDir(ctx context.Context, repoRoot string) (string, error) {
	out, err := runGit(ctx, repoRoot, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func runGit(ctx context.Context, repoRoot string, args ...string) (string, error) {
	arguments := append([]string{"-C", repoRoot}, args...)
	out, err := exec.CommandContext(ctx, "git", arguments...).Output()
	if err != nil {
		return "", fmt.Errorf("githook: git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}
