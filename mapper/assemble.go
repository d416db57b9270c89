package mapper

import (
	"encoding/json"
	"strings"

	"github.com/jackwu/vibetrail/model"
)

// accumulatingTurn marks a tool handle whose owning message has not been
// flushed to the output yet.
const accumulatingTurn = -1

// toolHandle locates one ToolCall so a later result can fill its output.
// message indexes the emitted transcript, or accumulatingTurn while the
// owning assistant turn is still open.
type toolHandle struct {
	message int
	tool    int
}

// assembler is the forward-pass state machine that merges consecutive
// same-turn log entries into one message per logical turn, and matches
// tool results to the calls that produced them. One assembler serves one
// mapping invocation; nothing is shared across invocations.
type assembler struct {
	out []model.Message

	// open assistant turn. active distinguishes "no turn yet" from an
	// accumulating turn whose id may legitimately be empty, so the very
	// first assistant entry without an id still starts a new turn.
	active    bool
	turnID    string
	content   string
	turnModel string
	timestamp string
	toolCalls []model.ToolCall
	thinking  []model.ThinkingBlock

	pending map[string]toolHandle
}

func newAssembler() *assembler {
	return &assembler{pending: make(map[string]toolHandle)}
}

// human flushes any open assistant turn and appends a human message.
func (a *assembler) human(text, timestamp string) {
	a.flush()
	a.out = append(a.out, model.Message{
		Role:      model.RoleHuman,
		Content:   text,
		Timestamp: timestamp,
	})
}

// beginTurn opens an assistant turn, flushing the previous one when the
// turn identity changes. Consecutive entries with the same identity
// (including two anonymous entries) accumulate into one message.
func (a *assembler) beginTurn(id, turnModel, timestamp string) {
	if a.active && a.turnID == id {
		return
	}
	a.flush()
	a.active = true
	a.turnID = id
	a.turnModel = turnModel
	a.timestamp = timestamp
}

// text appends a text block to the open turn. Blocks are newline-joined;
// the leading newline this produces is trimmed once at flush time.
func (a *assembler) text(s string) {
	a.content += "\n" + s
}

// think appends a thinking block to the open turn.
func (a *assembler) think(s string) {
	a.thinking = append(a.thinking, model.ThinkingBlock{Text: s})
}

// toolCall appends a tool call with empty output and registers its id so
// a later result can fill it in.
func (a *assembler) toolCall(callID, name string, input json.RawMessage) {
	a.toolCalls = append(a.toolCalls, model.ToolCall{
		Name:  name,
		Input: prettyInput(input),
	})
	if callID != "" {
		a.pending[callID] = toolHandle{message: accumulatingTurn, tool: len(a.toolCalls) - 1}
	}
}

// toolResult fills in the output of a pending tool call. The first match
// wins; a result with no pending call is dropped without error. The
// handle may point into a message already appended to the output, so the
// transcript is settled only once the whole pass completes.
func (a *assembler) toolResult(callID, output string, isError bool) {
	handle, ok := a.pending[callID]
	if !ok {
		return
	}
	delete(a.pending, callID)

	if isError {
		output = model.ErrorPrefix + output
	}
	if handle.message == accumulatingTurn {
		a.toolCalls[handle.tool].Output = output
		return
	}
	a.out[handle.message].ToolCalls[handle.tool].Output = output
}

// flush closes the open assistant turn, if any, and appends it to the
// output. Pending tool handles into the turn are repointed at the
// emitted message.
func (a *assembler) flush() {
	if !a.active {
		return
	}

	a.out = append(a.out, model.Message{
		Role:      model.RoleAssistant,
		Content:   strings.TrimPrefix(a.content, "\n"),
		Timestamp: a.timestamp,
		Model:     a.turnModel,
		ToolCalls: a.toolCalls,
		Thinking:  a.thinking,
	})

	emitted := len(a.out) - 1
	for id, handle := range a.pending {
		if handle.message == accumulatingTurn {
			a.pending[id] = toolHandle{message: emitted, tool: handle.tool}
		}
	}

	a.active = false
	a.turnID = ""
	a.content = ""
	a.turnModel = ""
	a.timestamp = ""
	a.toolCalls = nil
	a.thinking = nil
}

// finish flushes any in-progress turn and returns the transcript.
func (a *assembler) finish() []model.Message {
	a.flush()
	return a.out
}
