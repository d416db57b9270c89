package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jackwu/vibetrail/model"
	"github.com/jackwu/vibetrail/scanner"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print sessions as plain text",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sessions := scanner.ScanAll(cfg.Dirs())
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].Time.After(sessions[j].Time)
		})

		for _, s := range sessions {
			fmt.Printf("%-8s │ %s │ %-14s │ %-14s │ %s\n",
				s.Agent, s.ShortID, humanize.Time(s.Time), s.Project, s.Summary)
		}
		return nil
	},
}

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Print a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		session, ok := findSession(scanner.ScanAll(cfg.Dirs()), args[0])
		if !ok {
			return fmt.Errorf("no session matching %q", args[0])
		}

		messages := loadTranscript(session)

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(messages)
		}

		fmt.Print(renderTranscript(session, messages))
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the canonical transcript as JSON")
}

// findSession matches by full ID, short ID or unique prefix.
func findSession(sessions []model.Session, query string) (model.Session, bool) {
	var prefix []model.Session
	for _, s := range sessions {
		if s.ID == query || s.ShortID == query {
			return s, true
		}
		if strings.HasPrefix(s.ID, query) {
			prefix = append(prefix, s)
		}
	}
	if len(prefix) == 1 {
		return prefix[0], true
	}
	return model.Session{}, false
}

func renderTranscript(session model.Session, messages []model.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — %s\n\n", session.Agent, session.ShortID)

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleHuman:
			b.WriteString("## Human\n\n")
		case model.RoleAssistant:
			if msg.Model != "" {
				fmt.Fprintf(&b, "## Assistant (%s)\n\n", msg.Model)
			} else {
				b.WriteString("## Assistant\n\n")
			}
		}
		for _, tb := range msg.Thinking {
			fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(tb.Text, "\n", "\n> "))
		}
		if msg.Content != "" {
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		}
		for _, tc := range msg.ToolCalls {
			fmt.Fprintf(&b, "**Tool: %s**\n\n", tc.Name)
			if tc.Output != "" {
				fmt.Fprintf(&b, "```\n%s\n```\n\n", tc.Output)
			}
		}
	}

	rendered, err := renderMarkdown(b.String())
	if err != nil {
		return b.String()
	}
	return rendered
}

func renderMarkdown(text string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}
