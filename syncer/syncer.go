// Package syncer uploads session transcripts to a remote vibetrail
// server so a team can browse each other's agent sessions.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackwu/vibetrail/model"
)

// Bundle is the upload payload: one session plus its full transcript.
type Bundle struct {
	Session  model.Session   `json:"session"`
	Messages []model.Message `json:"messages"`
}

// Client talks to a vibetrail sync server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

// New builds a Client for the given server. Token may be empty for
// servers that do not require auth.
func New(baseURL, token string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Push uploads one session bundle. The server upserts by session ID,
// so pushing the same session twice is safe.
func (c *Client) Push(ctx context.Context, bundle Bundle) error {
	body, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("syncer: encoding bundle: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("syncer: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("syncer: pushing %s: %w", bundle.Session.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("syncer: server rejected %s: %s: %s",
			bundle.Session.ID, resp.Status, strings.TrimSpace(string(detail)))
	}

	c.log.Info("pushed session",
		"session", bundle.Session.ID,
		"agent", bundle.Session.Agent,
		"messages", len(bundle.Messages))
	return nil
}

// PushAll uploads every bundle, continuing past individual failures
// and returning the first error encountered.
func (c *Client) PushAll(ctx context.Context, bundles []Bundle) error {
	var firstErr error
	for _, bundle := range bundles {
		if err := c.Push(ctx, bundle); err != nil {
			c.log.Warn("push failed", "session", bundle.Session.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
