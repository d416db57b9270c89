package mapper

import (
	"encoding/json"
	"strings"

	"github.com/jackwu/vibetrail/model"
)

// claudeEntry is one line of a Claude Code session log. Entries form a
// parent-pointer DAG through uuid/parentUuid.
type claudeEntry struct {
	Type        string        `json:"type"`
	UUID        string        `json:"uuid"`
	ParentUUID  string        `json:"parentUuid"`
	IsMeta      bool          `json:"isMeta"`
	IsSidechain bool          `json:"isSidechain"`
	Timestamp   string        `json:"timestamp"`
	Message     claudeMessage `json:"message"`
}

type claudeMessage struct {
	// ID is the API message id. One logical reply streams as several
	// log entries sharing this id, which is what turn merging keys on.
	ID      string          `json:"id"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Model   string          `json:"model"`
}

// claudeBlock is one typed content block. Unknown types are ignored.
type claudeBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"` // tool_result payload
	IsError   bool            `json:"is_error"`
}

// MapClaude maps a Claude Code session log to a canonical transcript.
func MapClaude(raw string) []model.Message {
	entries := decodeLines[claudeEntry](raw)

	// Conversational, id-bearing entries only. Sidechain entries belong
	// to subagent conversations, not this transcript. Meta entries stay
	// in the chain so parent links survive; the assembly pass skips them.
	var conversation []claudeEntry
	for _, entry := range entries {
		if entry.Type != "user" && entry.Type != "assistant" {
			continue
		}
		if entry.UUID == "" || entry.IsSidechain {
			continue
		}
		conversation = append(conversation, entry)
	}

	branch := activeBranch(conversation,
		func(e claudeEntry) string { return e.UUID },
		func(e claudeEntry) string { return e.ParentUUID },
	)

	a := newAssembler()
	for _, entry := range branch {
		if entry.IsMeta {
			// Injected content (command transcripts, reminders): not a
			// turn of the conversation.
			continue
		}
		switch entry.Type {
		case "user":
			mapClaudeUser(a, entry)
		case "assistant":
			mapClaudeAssistant(a, entry)
		}
	}
	return a.finish()
}

func mapClaudeUser(a *assembler, entry claudeEntry) {
	// Content is either a plain string or a block list.
	var text string
	if err := json.Unmarshal(entry.Message.Content, &text); err == nil {
		a.human(text, entry.Timestamp)
		return
	}

	var blocks []claudeBlock
	if err := json.Unmarshal(entry.Message.Content, &blocks); err != nil {
		return
	}

	hasResult := false
	var texts []string
	for _, block := range blocks {
		switch block.Type {
		case "tool_result":
			a.toolResult(block.ToolUseID, claudeResultText(block.Content), block.IsError)
			hasResult = true
		case "text":
			texts = append(texts, block.Text)
		}
	}
	// Tool-result carriers are transport for the matcher, not visible
	// turns of the conversation.
	if hasResult {
		return
	}
	a.human(strings.Join(texts, "\n"), entry.Timestamp)
}

func mapClaudeAssistant(a *assembler, entry claudeEntry) {
	a.beginTurn(entry.Message.ID, entry.Message.Model, entry.Timestamp)

	var blocks []claudeBlock
	if err := json.Unmarshal(entry.Message.Content, &blocks); err != nil {
		// Rarely the content is a bare string.
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
			a.think(block.Thinking)
		case "tool_use":
			a.toolCall(block.ID, block.Name, block.Input)
		}
	}
}

// claudeResultText extracts the output text of a tool_result payload,
// which is either a plain string or a list of text blocks.
func claudeResultText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var blocks []claudeBlock
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
