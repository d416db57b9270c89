package githook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// hookMarker identifies a hook we wrote, so re-installs are idempotent
// and foreign hooks are never clobbered.
const hookMarker = "# installed by vibetrail"

const hookScript = `#!/bin/sh
` + hookMarker + `
# Link the new commit to recently active agent sessions. Never fail
# the commit.
vibetrail link --quiet || true
`

// Install writes the post-commit hook into the repository's hooks
// directory. Re-running is a no-op; a hook we did not write is left
// alone and reported as an error.
func Install(ctx context.Context, repoRoot string) (string, error) {
	dir, err := hooksDir(ctx, repoRoot)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(repoRoot, dir)
	}
	return writeHook(dir)
}

// writeHook does the filesystem half of Install, separated from git
// resolution so it can exercise the overwrite rules directly.
func writeHook(hooksDir string) (string, error) {
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return "", fmt.Errorf("githook: creating %s: %w", hooksDir, err)
	}

	path := filepath.Join(hooksDir, "post-commit")
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if strings.Contains(string(existing), hookMarker) {
			// ours already; refresh in case the script changed
			break
		}
		return "", fmt.Errorf("githook: %s exists and was not installed by vibetrail", path)
	case os.IsNotExist(err):
	default:
		return "", fmt.Errorf("githook: reading %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(hookScript), 0o755); err != nil {
		return "", fmt.Errorf("githook: writing %s: %w", path, err)
	}
	return path, nil
}
