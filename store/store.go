// Package store persists captured sessions, their canonical transcripts,
// commit links, and search text in SQLite.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/jackwu/vibetrail/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    agent      TEXT NOT NULL,
    project    TEXT NOT NULL DEFAULT '',
    cwd        TEXT NOT NULL DEFAULT '',
    summary    TEXT NOT NULL DEFAULT '',
    file_path  TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    session_id TEXT NOT NULL,
    idx        INTEGER NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL,
    timestamp  TEXT NOT NULL DEFAULT '',
    model      TEXT NOT NULL DEFAULT '',
    tool_calls TEXT NOT NULL DEFAULT '',
    thinking   TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (session_id, idx)
);

CREATE TABLE IF NOT EXISTS commit_links (
    sha          TEXT NOT NULL,
    session_id   TEXT NOT NULL,
    agent        TEXT NOT NULL DEFAULT '',
    committed_at INTEGER NOT NULL,
    subject      TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (sha, session_id)
);

CREATE TABLE IF NOT EXISTS search_text (
    session_id TEXT PRIMARY KEY,
    text       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_links_session ON commit_links(session_id);
`

// Store is a SQLite-backed session archive. Connections come from a
// fixed-size pool; take one per operation and return it when done.
type Store struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open opens (creating if needed) the archive at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: path is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: 4,
		PrepareConn: func(conn *sqlite.Conn) error {
			pragmas := []string{
				"PRAGMA journal_mode=WAL",
				"PRAGMA synchronous=NORMAL",
				"PRAGMA busy_timeout=5000",
				"PRAGMA temp_store=MEMORY",
			}
			for _, pragma := range pragmas {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return fmt.Errorf("%s: %w", pragma, err)
				}
			}
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	logger.Debug("store opened", "path", path)
	return &Store{pool: pool, logger: logger, path: path}, nil
}

// Close closes the pool. Blocks until borrowed connections are returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("store: closing %s: %w", s.path, err)
	}
	return nil
}

// SaveSession upserts the session row and replaces its transcript and
// search text in one transaction.
func (s *Store) SaveSession(ctx context.Context, session model.Session, messages []model.Message, searchText string) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: take: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn, `
		INSERT INTO sessions (id, agent, project, cwd, summary, file_path, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    agent = excluded.agent,
		    project = excluded.project,
		    cwd = excluded.cwd,
		    summary = excluded.summary,
		    file_path = excluded.file_path,
		    updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{
			session.ID, string(session.Agent), session.Project, session.CWD,
			session.Summary, session.FilePath, session.Time.Unix(),
		}})
	if err != nil {
		return fmt.Errorf("store: upsert session %s: %w", session.ID, err)
	}

	err = sqlitex.Execute(conn, `DELETE FROM messages WHERE session_id = ?`,
		&sqlitex.ExecOptions{Args: []any{session.ID}})
	if err != nil {
		return fmt.Errorf("store: clear transcript %s: %w", session.ID, err)
	}

	for i, message := range messages {
		toolCalls, thinking, err := encodeExtras(message)
		if err != nil {
			return fmt.Errorf("store: encode message %d of %s: %w", i, session.ID, err)
		}
		err = sqlitex.Execute(conn, `
			INSERT INTO messages (session_id, idx, role, content, timestamp, model, tool_calls, thinking)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				session.ID, i, message.Role, message.Content,
				message.Timestamp, message.Model, toolCalls, thinking,
			}})
		if err != nil {
			return fmt.Errorf("store: insert message %d of %s: %w", i, session.ID, err)
		}
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO search_text (session_id, text) VALUES (?, ?)
		ON CONFLICT(session_id) DO UPDATE SET text = excluded.text`,
		&sqlitex.ExecOptions{Args: []any{session.ID, searchText}})
	if err != nil {
		return fmt.Errorf("store: save search text %s: %w", session.ID, err)
	}

	s.logger.Debug("session saved", "session", session.ID, "agent", session.Agent, "messages", len(messages))
	return nil
}

// Sessions returns all stored sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]model.Session, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: take: %w", err)
	}
	defer s.pool.Put(conn)

	var sessions []model.Session
	err = sqlitex.Execute(conn, `
		SELECT id, agent, project, cwd, summary, file_path, updated_at
		FROM sessions ORDER BY updated_at DESC, id`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			sessions = append(sessions, sessionFromRow(stmt))
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	return sessions, nil
}

// Session returns one session by exact id.
func (s *Store) Session(ctx context.Context, id string) (model.Session, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return model.Session{}, fmt.Errorf("store: take: %w", err)
	}
	defer s.pool.Put(conn)

	var session model.Session
	found := false
	err = sqlitex.Execute(conn, `
		SELECT id, agent, project, cwd, summary, file_path, updated_at
		FROM sessions WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				session = sessionFromRow(stmt)
				found = true
				return nil
			}})
	if err != nil {
		return model.Session{}, fmt.Errorf("store: get session %s: %w", id, err)
	}
	if !found {
		return model.Session{}, fmt.Errorf("store: session %s not found", id)
	}
	return session, nil
}

// Messages returns the stored transcript for a session in order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]model.Message, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: take: %w", err)
	}
	defer s.pool.Put(conn)

	var messages []model.Message
	var decodeErr error
	err = sqlitex.Execute(conn, `
		SELECT role, content, timestamp, model, tool_calls, thinking
		FROM messages WHERE session_id = ? ORDER BY idx`,
		&sqlitex.ExecOptions{
			Args: []any{sessionID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				message := model.Message{
					Role:      stmt.ColumnText(0),
					Content:   stmt.ColumnText(1),
					Timestamp: stmt.ColumnText(2),
					Model:     stmt.ColumnText(3),
				}
				if raw := stmt.ColumnText(4); raw != "" {
					if err := json.Unmarshal([]byte(raw), &message.ToolCalls); err != nil {
						decodeErr = err
					}
				}
				if raw := stmt.ColumnText(5); raw != "" {
					if err := json.Unmarshal([]byte(raw), &message.Thinking); err != nil {
						decodeErr = err
					}
				}
				messages = append(messages, message)
				return nil
			}})
	if err != nil {
		return nil, fmt.Errorf("store: messages for %s: %w", sessionID, err)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("store: decode transcript for %s: %w", sessionID, decodeErr)
	}
	return messages, nil
}

// SaveCommitLink records a commit-to-session link. Saving the same pair
// twice updates the commit metadata.
func (s *Store) SaveCommitLink(ctx context.Context, link model.CommitLink) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: take: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO commit_links (sha, session_id, agent, committed_at, subject)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(sha, session_id) DO UPDATE SET
		    agent = excluded.agent,
		    committed_at = excluded.committed_at,
		    subject = excluded.subject`,
		&sqlitex.ExecOptions{Args: []any{
			link.SHA, link.SessionID, string(link.Agent), link.CommittedAt.Unix(), link.Subject,
		}})
	if err != nil {
		return fmt.Errorf("store: link %s -> %s: %w", link.SHA, link.SessionID, err)
	}
	s.logger.Debug("commit linked", "sha", link.SHA, "session", link.SessionID)
	return nil
}

// LinksForSession returns the commits linked to a session, newest first.
func (s *Store) LinksForSession(ctx context.Context, sessionID string) ([]model.CommitLink, error) {
	return s.queryLinks(ctx, `WHERE session_id = ?`, sessionID)
}

// LinksForCommit returns the sessions linked to a commit.
func (s *Store) LinksForCommit(ctx context.Context, sha string) ([]model.CommitLink, error) {
	return s.queryLinks(ctx, `WHERE sha = ?`, sha)
}

func (s *Store) queryLinks(ctx context.Context, where string, arg any) ([]model.CommitLink, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: take: %w", err)
	}
	defer s.pool.Put(conn)

	var links []model.CommitLink
	err = sqlitex.Execute(conn, `
		SELECT sha, session_id, agent, committed_at, subject
		FROM commit_links `+where+` ORDER BY committed_at DESC, sha`,
		&sqlitex.ExecOptions{
			Args: []any{arg},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				links = append(links, model.CommitLink{
					SHA:         stmt.ColumnText(0),
					SessionID:   stmt.ColumnText(1),
					Agent:       model.Agent(stmt.ColumnText(2)),
					CommittedAt: time.Unix(stmt.ColumnInt64(3), 0).UTC(),
					Subject:     stmt.ColumnText(4),
				})
				return nil
			}})
	if err != nil {
		return nil, fmt.Errorf("store: query links: %w", err)
	}
	return links, nil
}

// SearchRow is one session's searchable fields.
type SearchRow struct {
	SessionID string
	Project   string
	Summary   string
	Text      string
}

// SearchRows returns every session's searchable fields for ranking.
func (s *Store) SearchRows(ctx context.Context) ([]SearchRow, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: take: %w", err)
	}
	defer s.pool.Put(conn)

	var rows []SearchRow
	err = sqlitex.Execute(conn, `
		SELECT s.id, s.project, s.summary, COALESCE(t.text, '')
		FROM sessions s LEFT JOIN search_text t ON t.session_id = s.id`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			rows = append(rows, SearchRow{
				SessionID: stmt.ColumnText(0),
				Project:   stmt.ColumnText(1),
				Summary:   stmt.ColumnText(2),
				Text:      stmt.ColumnText(3),
			})
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("store: search rows: %w", err)
	}
	return rows, nil
}

func sessionFromRow(stmt *sqlite.Stmt) model.Session {
	id := stmt.ColumnText(0)
	return model.Session{
		ID:       id,
		ShortID:  shortID(id),
		Agent:    model.Agent(stmt.ColumnText(1)),
		Project:  stmt.ColumnText(2),
		CWD:      stmt.ColumnText(3),
		Summary:  stmt.ColumnText(4),
		FilePath: stmt.ColumnText(5),
		Time:     time.Unix(stmt.ColumnInt64(6), 0).UTC(),
	}
}

func shortID(id string) string {
	if len(id) < 9 {
		return id
	}
	return id[:4] + ".." + id[len(id)-4:]
}

func encodeExtras(message model.Message) (toolCalls, thinking string, err error) {
	if len(message.ToolCalls) > 0 {
		raw, err := json.Marshal(message.ToolCalls)
		if err != nil {
			return "", "", err
		}
		toolCalls = string(raw)
	}
	if len(message.Thinking) > 0 {
		raw, err := json.Marshal(message.Thinking)
		if err != nil {
			return "", "", err
		}
		thinking = string(raw)
	}
	return toolCalls, thinking, nil
}
