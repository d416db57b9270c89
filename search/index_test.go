package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/vibetrail/store"
)

func testRows() []store.SearchRow {
	return []store.SearchRow{
		{SessionID: "s1", Project: "webapp", Summary: "fix login redirect", Text: "the oauth callback loops forever"},
		{SessionID: "s2", Project: "webapp", Summary: "add dark mode", Text: "css variables for theme colors"},
		{SessionID: "s3", Project: "parser", Summary: "tolerate malformed lines", Text: "skip bad json lines in the session log"},
	}
}

func TestSearchRanksRelevantSessionFirst(t *testing.T) {
	index := NewIndex(testRows())

	results := index.Search("malformed json", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "s3", results[0].SessionID)
}

func TestSearchSummaryOutranksBody(t *testing.T) {
	rows := []store.SearchRow{
		{SessionID: "body", Summary: "unrelated", Text: "login login login"},
		{SessionID: "summary", Summary: "login fix", Text: "unrelated"},
	}
	index := NewIndex(rows)

	results := index.Search("login", 10)
	require.Len(t, results, 2)
	assert.Equal(t, "summary", results[0].SessionID)
}

func TestSearchLimit(t *testing.T) {
	index := NewIndex(testRows())
	results := index.Search("webapp", 1)
	assert.Len(t, results, 1)
}

func TestSearchNoMatches(t *testing.T) {
	index := NewIndex(testRows())
	assert.Empty(t, index.Search("quaternion", 10))
	assert.Empty(t, index.Search("", 10))
	assert.Empty(t, index.Search("!!!", 10))
}

func TestSearchEmptyIndex(t *testing.T) {
	index := NewIndex(nil)
	assert.Empty(t, index.Search("anything", 10))
}
