// Package mapper turns raw agent session logs into canonical transcripts.
//
// Each supported agent persists sessions differently: Claude Code and pi
// write newline-delimited JSON forming a parent-pointer DAG (edits and
// regenerated replies create sibling branches), OpenCode writes a single
// JSON array. Every mapper reduces its format to the same ordered
// []model.Message along the active branch of the conversation.
//
// Mappers are total, pure functions: they never return an error and never
// panic. Malformed lines are skipped, a malformed document yields an empty
// transcript, and orphaned tool results are dropped. Each invocation
// allocates its own state, so mappers are safe to call concurrently.
package mapper

import "github.com/jackwu/vibetrail/model"

// Func maps a complete raw session log to a canonical transcript.
type Func func(raw string) []model.Message

var mappers = map[model.Agent]Func{
	model.AgentClaude:   MapClaude,
	model.AgentPi:       MapPi,
	model.AgentOpenCode: MapOpenCode,
}

// For returns the mapper for an agent, or false when the agent is not
// recognized. Callers decide whether an unknown agent is an error.
func For(agent model.Agent) (Func, bool) {
	f, ok := mappers[agent]
	return f, ok
}

// Agents lists the agents with a registered mapper.
func Agents() []model.Agent {
	return []model.Agent{model.AgentClaude, model.AgentPi, model.AgentOpenCode}
}
