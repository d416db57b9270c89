// Package search provides the lossy search-text extractor and BM25
// ranking over stored sessions.
package search

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jackwu/vibetrail/model"
)

// Extract pulls visible text out of a raw session log for indexing. It
// is a deliberately lossier derivative than the mapper's transcript: it
// reads every line of the log (abandoned branches included), keeps only
// text and thinking strings, and never errors — unusable input just
// yields less text.
func Extract(agent model.Agent, raw string) string {
	switch agent {
	case model.AgentClaude, model.AgentPi:
		return extractLines(raw)
	case model.AgentOpenCode:
		return extractArray(raw)
	default:
		return ""
	}
}

// extractLines handles the newline-delimited tree formats. Claude Code
// and pi both nest content under message.content as either a string or
// a block list, so one routine serves both.
func extractLines(raw string) string {
	var texts []string
	gjson.ForEachLine(raw, func(line gjson.Result) bool {
		content := line.Get("message.content")
		switch {
		case content.Type == gjson.String:
			appendText(&texts, content.String())
		case content.IsArray():
			content.ForEach(func(_, block gjson.Result) bool {
				appendText(&texts, block.Get("text").String())
				appendText(&texts, block.Get("thinking").String())
				return true
			})
		}
		return true
	})
	return strings.Join(texts, "\n")
}

// extractArray handles the OpenCode whole-document array.
func extractArray(raw string) string {
	document := gjson.Parse(raw)
	if !document.IsArray() {
		return ""
	}
	var texts []string
	document.ForEach(func(_, message gjson.Result) bool {
		message.Get("parts").ForEach(func(_, part gjson.Result) bool {
			appendText(&texts, part.Get("text").String())
			return true
		})
		return true
	})
	return strings.Join(texts, "\n")
}

func appendText(texts *[]string, text string) {
	if strings.TrimSpace(text) != "" {
		*texts = append(*texts, text)
	}
}
