package launcher

import (
	"fmt"
	"strings"

	"github.com/jackwu/vibetrail/model"
)

// BuildCommand returns the shell command to resume a session.
func BuildCommand(s model.Session) string {
	switch s.Agent {
	case model.AgentClaude:
		return fmt.Sprintf("cd %s && claude -r %s", shellQuote(s.CWD), shellQuote(s.ID))
	case model.AgentPi:
		return fmt.Sprintf("cd %s && pi --resume %s", shellQuote(s.CWD), shellQuote(s.ID))
	case model.AgentOpenCode:
		return fmt.Sprintf("cd %s && opencode --session %s", shellQuote(s.CWD), shellQuote(s.ID))
	default:
		return ""
	}
}

// BuildYoloCommand returns the shell command to resume a session with
// permission prompts disabled.
func BuildYoloCommand(s model.Session) string {
	switch s.Agent {
	case model.AgentClaude:
		return fmt.Sprintf("cd %s && claude -r %s --dangerously-skip-permissions", shellQuote(s.CWD), shellQuote(s.ID))
	case model.AgentPi:
		return fmt.Sprintf("cd %s && pi --resume %s --yolo", shellQuote(s.CWD), shellQuote(s.ID))
	case model.AgentOpenCode:
		return fmt.Sprintf("cd %s && opencode --session %s", shellQuote(s.CWD), shellQuote(s.ID))
	default:
		return ""
	}
}

// BuildNewCommand returns the shell command to start a new session.
func BuildNewCommand(agent model.Agent, dir string, yolo bool) string {
	cd := fmt.Sprintf("cd %s", shellQuote(dir))
	switch agent {
	case model.AgentClaude:
		if yolo {
			return cd + " && claude --dangerously-skip-permissions"
		}
		return cd + " && claude"
	case model.AgentPi:
		if yolo {
			return cd + " && pi --yolo"
		}
		return cd + " && pi"
	case model.AgentOpenCode:
		return cd + " && opencode"
	default:
		return ""
	}
}

func shellQuote(s string) string {
	// simple quoting: wrap in single quotes, escape existing single quotes
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
