package mapper

import (
	"encoding/json"
	"strings"
)

// decodeLines parses a newline-delimited JSON document into entries.
// Blank lines are dropped and a line that fails to parse is skipped
// silently; parsing continues with the next line.
func decodeLines[T any](raw string) []T {
	var entries []T
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry T
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// decodeArray parses a whole-document JSON array. There is no partial
// recovery for this shape: a document that fails to parse, or that is
// not an array, yields no entries.
func decodeArray[T any](raw string) []T {
	var entries []T
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

// prettyInput renders structured tool arguments for display. Falls back
// to the raw text when the payload is not valid JSON.
func prettyInput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return string(raw)
	}
	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(pretty)
}
