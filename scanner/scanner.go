// Package scanner discovers agent session files on disk and extracts
// just enough metadata to list them: id, working directory, a summary
// taken from the first real user message, and last activity time.
// Scanners are tolerant by construction — an unreadable or unparseable
// file is skipped, never an error.
package scanner

import (
	"regexp"
	"strings"

	"github.com/jackwu/vibetrail/model"
)

const summaryLimit = 120

// ScanAll scans every configured agent directory and returns the
// combined session list.
func ScanAll(dirs Dirs) []model.Session {
	var sessions []model.Session
	sessions = append(sessions, ScanClaude(dirs.Claude)...)
	sessions = append(sessions, ScanPi(dirs.Pi)...)
	sessions = append(sessions, ScanOpenCode(dirs.OpenCode)...)
	return sessions
}

// Dirs holds the per-agent session directories.
type Dirs struct {
	Claude   string
	Pi       string
	OpenCode string
}

var systemTagRe = regexp.MustCompile(`<[^>]+>`)

// isSystemContent reports whether a user message is system-injected
// (command transcripts, reminders, environment context) rather than
// something the user typed.
func isSystemContent(text string) bool {
	return strings.HasPrefix(text, "<local-command-") ||
		strings.HasPrefix(text, "<command-name>") ||
		strings.Contains(text, "<system-reminder>") ||
		strings.Contains(text, "<environment_context>") ||
		strings.HasPrefix(text, "Caveat:")
}

// summarize flattens and truncates a first user message for list display.
func summarize(text string) string {
	text = systemTagRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}
	return string(runes[:summaryLimit-2]) + ".."
}

func shortID(id string) string {
	if len(id) < 9 {
		return id
	}
	return id[:4] + ".." + id[len(id)-4:]
}

func projectName(cwd string) string {
	name := cwd
	if i := strings.LastIndexAny(cwd, `/\`); i >= 0 {
		name = cwd[i+1:]
	}
	if name == "" || name == "." {
		return "unknown"
	}
	return name
}
