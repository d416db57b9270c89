package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/vibetrail/model"
)

func TestForKnownAgents(t *testing.T) {
	for _, agent := range Agents() {
		f, ok := For(agent)
		require.True(t, ok, "agent %s", agent)
		require.NotNil(t, f)
		// Every mapper degrades to an empty transcript on junk input.
		assert.Empty(t, f(""))
		assert.Empty(t, f("}{ not json"))
	}
}

func TestForUnknownAgent(t *testing.T) {
	f, ok := For(model.Agent("copilot"))
	assert.False(t, ok)
	assert.Nil(t, f)
}
