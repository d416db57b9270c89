package model

import "time"

// Agent identifies which coding agent produced a session log.
type Agent string

const (
	AgentClaude   Agent = "claude"
	AgentPi       Agent = "pi"
	AgentOpenCode Agent = "opencode"
)

// Session is discovery metadata for one session log on disk.
type Session struct {
	ID       string
	ShortID  string // first4..last4
	Agent    Agent
	Time     time.Time // last activity (file mtime)
	Project  string    // last component of CWD
	CWD      string    // full working directory path
	Summary  string    // first user message, truncated
	FilePath string    // path to the raw session file
}

// CommitLink ties a git commit to the session that was active when the
// commit was made.
type CommitLink struct {
	SHA         string
	SessionID   string
	Agent       Agent
	CommittedAt time.Time
	Subject     string
}
