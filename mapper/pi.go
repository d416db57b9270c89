package mapper

import (
	"encoding/json"
	"strings"

	"github.com/jackwu/vibetrail/model"
)

// piEntry is one line of a pi session log. Like Claude Code the entries
// form a parent-pointer DAG, but the link fields are id/parentId and
// tool results arrive under a dedicated message role instead of inside
// user entries.
type piEntry struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId"`
	Timestamp string    `json:"timestamp"`
	Message   piMessage `json:"message"`
}

type piMessage struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"`
	Model      string          `json:"model"`
	ToolCallID string          `json:"toolCallId"`
	IsError    bool            `json:"isError"`
}

type piBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// MapPi maps a pi session log to a canonical transcript.
func MapPi(raw string) []model.Message {
	entries := decodeLines[piEntry](raw)

	// Role-bearing, id-bearing entries only. toolResult entries are part
	// of the chain (later turns reply to them), so they must survive
	// into the branch walk even though they emit no message.
	var conversation []piEntry
	for _, entry := range entries {
		switch entry.Message.Role {
		case "user", "assistant", "toolResult":
		default:
			continue
		}
		if entry.ID == "" {
			continue
		}
		conversation = append(conversation, entry)
	}

	branch := activeBranch(conversation,
		func(e piEntry) string { return e.ID },
		func(e piEntry) string { return e.ParentID },
	)

	a := newAssembler()
	for _, entry := range branch {
		switch entry.Message.Role {
		case "user":
			a.human(piText(entry.Message.Content), entry.Timestamp)
		case "toolResult":
			a.toolResult(entry.Message.ToolCallID, piText(entry.Message.Content), entry.Message.IsError)
		case "assistant":
			mapPiAssistant(a, entry)
		}
	}
	return a.finish()
}

func mapPiAssistant(a *assembler, entry piEntry) {
	// pi writes one entry per reply, so the entry id is the turn
	// identity; merging only happens if the log repeats an id.
	a.beginTurn(entry.ID, entry.Message.Model, entry.Timestamp)

	var blocks []piBlock
	if err := json.Unmarshal(entry.Message.Content, &blocks); err != nil {
		var text string
		if err := json.Unmarshal(entry.Message.Content, &text); err == nil && text != "" {
			a.text(text)
		}
		return
	}

	for _, block := range blocks {
		switch block.Type {
		case "text":
			a.text(block.Text)
		case "thinking":
			a.think(piBlockText(block))
		case "toolCall":
			a.toolCall(block.ID, block.Name, block.Arguments)
		}
	}
}

// piText renders message content that is either a plain string or a
// list of blocks, keeping only the text-typed ones.
func piText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var blocks []piBlock
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

// piBlockText prefers the thinking field but accepts text, which older
// logs use for reasoning blocks.
func piBlockText(block piBlock) string {
	if block.Thinking != "" {
		return block.Thinking
	}
	return block.Text
}
