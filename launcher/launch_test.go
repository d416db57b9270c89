package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jackwu/vibetrail/model"
)

func TestBuildCommand(t *testing.T) {
	claude := model.Session{ID: "sess-1", Agent: model.AgentClaude, CWD: "/home/me/proj"}
	assert.Equal(t, "cd '/home/me/proj' && claude -r 'sess-1'", BuildCommand(claude))

	pi := model.Session{ID: "p1", Agent: model.AgentPi, CWD: "/tmp"}
	assert.Equal(t, "cd '/tmp' && pi --resume 'p1'", BuildCommand(pi))

	oc := model.Session{ID: "oc1", Agent: model.AgentOpenCode, CWD: "/tmp"}
	assert.Equal(t, "cd '/tmp' && opencode --session 'oc1'", BuildCommand(oc))

	unknown := model.Session{ID: "x", Agent: model.Agent("copilot")}
	assert.Empty(t, BuildCommand(unknown))
}

func TestBuildCommandQuoting(t *testing.T) {
	s := model.Session{ID: "sess", Agent: model.AgentClaude, CWD: "/home/o'brien/proj"}
	assert.Equal(t, `cd '/home/o'\''brien/proj' && claude -r 'sess'`, BuildCommand(s))
}

func TestBuildYoloCommand(t *testing.T) {
	s := model.Session{ID: "sess", Agent: model.AgentClaude, CWD: "/tmp"}
	assert.Contains(t, BuildYoloCommand(s), "--dangerously-skip-permissions")

	pi := model.Session{ID: "p", Agent: model.AgentPi, CWD: "/tmp"}
	assert.Contains(t, BuildYoloCommand(pi), "--yolo")
}

func TestBuildNewCommand(t *testing.T) {
	assert.Equal(t, "cd '/tmp' && claude", BuildNewCommand(model.AgentClaude, "/tmp", false))
	assert.Equal(t, "cd '/tmp' && claude --dangerously-skip-permissions", BuildNewCommand(model.AgentClaude, "/tmp", true))
	assert.Equal(t, "cd '/tmp' && pi --yolo", BuildNewCommand(model.AgentPi, "/tmp", true))
	assert.Empty(t, BuildNewCommand(model.Agent("copilot"), "/tmp", false))
}
