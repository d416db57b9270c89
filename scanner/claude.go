package scanner

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackwu/vibetrail/model"
)

// ScanClaude finds Claude Code sessions under projectsDir (normally
// ~/.claude/projects), one subdirectory per project, one .jsonl file
// per session.
func ScanClaude(projectsDir string) []model.Session {
	if projectsDir == "" {
		return nil
	}

	projectEntries, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil
	}

	var sessions []model.Session
	for _, projectEntry := range projectEntries {
		if !projectEntry.IsDir() {
			continue
		}
		projectPath := filepath.Join(projectsDir, projectEntry.Name())
		fileEntries, err := os.ReadDir(projectPath)
		if err != nil {
			continue
		}

		for _, fileEntry := range fileEntries {
			name := fileEntry.Name()
			// only top-level .jsonl files; subdirectories hold subagent logs
			if fileEntry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
				continue
			}
			if session := parseClaudeSession(filepath.Join(projectPath, name)); session != nil {
				sessions = append(sessions, *session)
			}
		}
	}
	return sessions
}

func parseClaudeSession(filePath string) *model.Session {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 256*1024), 256*1024)

	type claudeLine struct {
		SessionID string `json:"sessionId"`
		CWD       string `json:"cwd"`
		Type      string `json:"type"`
		Message   struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	}

	var sessionID, cwd, summary string

	// some files start with snapshot or summary lines, so scan a bounded
	// prefix for the session id and the first real user message
	for i := 0; i < 50 && sc.Scan(); i++ {
		var line claudeLine
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			continue
		}
		if sessionID == "" && line.SessionID != "" {
			sessionID = line.SessionID
			cwd = line.CWD
		}
		if summary == "" && line.Type == "user" {
			if text := userText(line.Message.Content); text != "" && !isSystemContent(text) {
				summary = text
			}
		}
		if sessionID != "" && summary != "" {
			break
		}
	}
	if sessionID == "" {
		return nil
	}

	return &model.Session{
		ID:       sessionID,
		ShortID:  shortID(sessionID),
		Agent:    model.AgentClaude,
		Time:     info.ModTime(),
		Project:  projectName(cwd),
		CWD:      cwd,
		Summary:  summarize(summary),
		FilePath: filePath,
	}
}

// userText extracts plain text from user content that is either a
// string or a block list.
func userText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var texts []string
	for _, block := range blocks {
		if block.Type == "text" && block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "\n")
}
