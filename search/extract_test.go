package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jackwu/vibetrail/model"
)

func TestExtractClaudeIncludesAllBranches(t *testing.T) {
	// The extractor is lossier than the mapper on purpose: it keeps
	// text from abandoned branches too.
	raw := `{"type":"user","uuid":"u1","message":{"role":"user","content":"question"}}
{"type":"assistant","uuid":"b1","parentUuid":"u1","message":{"id":"m1","role":"assistant","content":[{"type":"text","text":"first draft"}]}}
{"type":"assistant","uuid":"b2","parentUuid":"u1","message":{"id":"m2","role":"assistant","content":[{"type":"thinking","thinking":"retry"},{"type":"text","text":"second draft"}]}}`

	text := Extract(model.AgentClaude, raw)
	assert.Contains(t, text, "question")
	assert.Contains(t, text, "first draft")
	assert.Contains(t, text, "retry")
	assert.Contains(t, text, "second draft")
}

func TestExtractPi(t *testing.T) {
	raw := `{"type":"message","id":"e1","message":{"role":"user","content":"add tests"}}
{"type":"message","id":"e2","parentId":"e1","message":{"role":"assistant","content":[{"type":"text","text":"adding them"}]}}`

	text := Extract(model.AgentPi, raw)
	assert.Contains(t, text, "add tests")
	assert.Contains(t, text, "adding them")
}

func TestExtractOpenCode(t *testing.T) {
	raw := `[{"info":{"role":"user"},"parts":[{"type":"text","text":"refactor"}]},{"info":{"role":"assistant"},"parts":[{"type":"text","text":"done"}]}]`

	text := Extract(model.AgentOpenCode, raw)
	assert.Contains(t, text, "refactor")
	assert.Contains(t, text, "done")
}

func TestExtractToleratesJunk(t *testing.T) {
	assert.Empty(t, Extract(model.AgentClaude, ""))
	assert.Empty(t, Extract(model.AgentOpenCode, "{not an array}"))
	assert.Empty(t, Extract(model.Agent("unknown"), "whatever"))
}
