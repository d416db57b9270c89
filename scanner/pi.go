package scanner

import (
	"bufio"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackwu/vibetrail/model"
)

// ScanPi finds pi sessions under sessionsDir (normally ~/.pi/sessions).
// pi nests session files by project, so the whole tree is walked.
func ScanPi(sessionsDir string) []model.Session {
	if sessionsDir == "" {
		return nil
	}
	if _, err := os.Stat(sessionsDir); err != nil {
		return nil
	}

	var sessions []model.Session
	filepath.WalkDir(sessionsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		if session := parsePiSession(path); session != nil {
			sessions = append(sessions, *session)
		}
		return nil
	})
	return sessions
}

func parsePiSession(filePath string) *model.Session {
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

	var sessionID, cwd, summary string

	for i := 0; i < 50 && sc.Scan(); i++ {
		var line struct {
			Type    string `json:"type"`
			ID      string `json:"id"`
			CWD     string `json:"cwd"`
			Message struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			continue
		}

		// the first line is a session header carrying id and cwd
		if line.Type == "session" && sessionID == "" {
			sessionID = line.ID
			cwd = line.CWD
		}
		if summary == "" && line.Message.Role == "user" {
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
		Agent:    model.AgentPi,
		Time:     info.ModTime(),
		Project:  projectName(cwd),
		CWD:      cwd,
		Summary:  summarize(summary),
		FilePath: filePath,
	}
}
