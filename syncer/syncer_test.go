package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/vibetrail/model"
)

func testBundle(id string) Bundle {
	return Bundle{
		Session: model.Session{ID: id, Agent: model.AgentClaude, Project: "demo"},
		Messages: []model.Message{
			{Role: model.RoleHuman, Content: "fix the bug"},
			{Role: model.RoleAssistant, Content: "done"},
		},
	}
}

func TestPush(t *testing.T) {
	var got Bundle
	var auth, contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sessions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New(server.URL, "secret-token", nil)
	err := client.Push(context.Background(), testBundle("sess-1"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", auth)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "sess-1", got.Session.ID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "fix the bug", got.Messages[0].Content)
}

func TestPushNoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
	}))
	defer server.Close()

	err := New(server.URL, "", nil).Push(context.Background(), testBundle("sess-2"))
	assert.NoError(t, err)
}

func TestPushServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	err := New(server.URL, "stale", nil).Push(context.Background(), testBundle("sess-3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "token expired")
}

func TestPushAllContinuesPastFailures(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var bundle Bundle
		require.NoError(t, json.NewDecoder(r.Body).Decode(&bundle))
		seen = append(seen, bundle.Session.ID)
		if bundle.Session.ID == "bad" {
			http.Error(w, "nope", http.StatusBadRequest)
		}
	}))
	defer server.Close()

	client := New(server.URL, "", nil)
	err := client.PushAll(context.Background(), []Bundle{
		testBundle("a"), testBundle("bad"), testBundle("b"),
	})
	require.Error(t, err)
	assert.Equal(t, []string{"a", "bad", "b"}, seen)
}
