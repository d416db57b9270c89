package mapper

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackwu/vibetrail/model"
)

// openCodeMessage is one element of an OpenCode session export: a flat
// JSON array, one element per message, with typed parts. This format
// does not branch, so there is no reconstruction step.
type openCodeMessage struct {
	Info  openCodeInfo   `json:"info"`
	Parts []openCodePart `json:"parts"`
}

type openCodeInfo struct {
	Role       string       `json:"role"`
	ID         string       `json:"id"`
	Time       openCodeTime `json:"time"`
	ModelID    string       `json:"modelID"`
	ProviderID string       `json:"providerID"`
}

type openCodeTime struct {
	Created int64 `json:"created"` // milliseconds since epoch
}

type openCodePart struct {
	Type   string             `json:"type"`
	Text   string             `json:"text"`
	Tool   string             `json:"tool"`
	CallID string             `json:"callID"`
	State  *openCodeToolState `json:"state"`
}

// openCodeToolState carries a tool part's result inline rather than as
// a separate log entry.
type openCodeToolState struct {
	Status string          `json:"status"`
	Input  json.RawMessage `json:"input"`
	Output string          `json:"output"`
	Error  string          `json:"error"`
}

// MapOpenCode maps an OpenCode session export to a canonical transcript.
func MapOpenCode(raw string) []model.Message {
	messages := decodeArray[openCodeMessage](raw)

	a := newAssembler()
	for i, message := range messages {
		timestamp := openCodeTimestamp(message.Info.Time.Created)
		switch message.Info.Role {
		case "user":
			var texts []string
			for _, part := range message.Parts {
				if part.Type == "text" && part.Text != "" {
					texts = append(texts, part.Text)
				}
			}
			a.human(strings.Join(texts, "\n"), timestamp)

		case "assistant":
			a.beginTurn(message.Info.ID, message.Info.ModelID, timestamp)
			for j, part := range message.Parts {
				switch part.Type {
				case "text":
					a.text(part.Text)
				case "reasoning":
					a.think(part.Text)
				case "tool":
					mapOpenCodeTool(a, i, j, part)
				}
			}
		}
	}
	return a.finish()
}

// mapOpenCodeTool registers a tool call and immediately routes its
// inline state through the matcher. Parts without a call id get a
// synthetic one scoped to this invocation.
func mapOpenCodeTool(a *assembler, messageIndex, partIndex int, part openCodePart) {
	callID := part.CallID
	if callID == "" {
		callID = fmt.Sprintf("part-%d-%d", messageIndex, partIndex)
	}

	var state openCodeToolState
	if part.State != nil {
		state = *part.State
	}

	a.toolCall(callID, part.Tool, state.Input)

	output := state.Output
	isError := state.Status == "error"
	if output == "" && isError {
		output = state.Error
	}
	if output != "" || isError {
		a.toolResult(callID, output, isError)
	}
}

// openCodeTimestamp renders a millisecond epoch as RFC 3339 UTC, or ""
// when the log carries no creation time.
func openCodeTimestamp(createdMS int64) string {
	if createdMS == 0 {
		return ""
	}
	return time.UnixMilli(createdMS).UTC().Format(time.RFC3339)
}
