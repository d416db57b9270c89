package scanner

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackwu/vibetrail/model"
)

// maxOpenCodeFile bounds how much of an export is read for metadata.
const maxOpenCodeFile = 16 * 1024 * 1024

// ScanOpenCode finds OpenCode session exports under exportsDir: .json
// files, each one whole-document array. The session id is the file
// stem; cwd comes from the export directory layout when nested.
func ScanOpenCode(exportsDir string) []model.Session {
	if exportsDir == "" {
		return nil
	}
	if _, err := os.Stat(exportsDir); err != nil {
		return nil
	}

	var sessions []model.Session
	filepath.WalkDir(exportsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		if session := parseOpenCodeSession(path); session != nil {
			sessions = append(sessions, *session)
		}
		return nil
	})
	return sessions
}

func parseOpenCodeSession(filePath string) *model.Session {
	info, err := os.Stat(filePath)
	if err != nil || info.Size() > maxOpenCodeFile {
		return nil
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil
	}

	var messages []struct {
		Info struct {
			Role      string `json:"role"`
			SessionID string `json:"sessionID"`
			CWD       string `json:"cwd"`
		} `json:"info"`
		Parts []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"parts"`
	}
	if err := json.Unmarshal(raw, &messages); err != nil || len(messages) == 0 {
		return nil
	}

	sessionID := messages[0].Info.SessionID
	if sessionID == "" {
		sessionID = strings.TrimSuffix(filepath.Base(filePath), ".json")
	}
	cwd := messages[0].Info.CWD

	var summary string
	for _, message := range messages {
		if message.Info.Role != "user" {
			continue
		}
		for _, part := range message.Parts {
			if part.Type == "text" && part.Text != "" && !isSystemContent(part.Text) {
				summary = part.Text
				break
			}
		}
		if summary != "" {
			break
		}
	}

	return &model.Session{
		ID:       sessionID,
		ShortID:  shortID(sessionID),
		Agent:    model.AgentOpenCode,
		Time:     info.ModTime(),
		Project:  projectName(cwd),
		CWD:      cwd,
		Summary:  summarize(summary),
		FilePath: filePath,
	}
}
