package search

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/jackwu/vibetrail/store"
)

// BM25 parameters (Okapi variant, standard values).
const (
	paramK1      = 1.2
	paramB       = 0.75
	paramEpsilon = 0.25
)

// Field weights: a hit in the summary or project name outranks the
// same hit buried in the transcript body.
const (
	weightSummary = 4
	weightProject = 2
	weightBody    = 1
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Result is one ranked session.
type Result struct {
	SessionID string
	Score     float64
}

// Index ranks sessions by BM25 relevance. Build it from the store's
// search rows per query; construction is linear in total text and the
// index is immutable afterwards.
type Index struct {
	ids             []string
	termFrequencies []map[string]int
	lengths         []int
	averageLength   float64
	idf             map[string]float64
}

// NewIndex builds a BM25 index over the sessions' weighted fields.
func NewIndex(rows []store.SearchRow) *Index {
	index := &Index{
		ids:             make([]string, len(rows)),
		termFrequencies: make([]map[string]int, len(rows)),
		lengths:         make([]int, len(rows)),
		idf:             make(map[string]float64),
	}

	documentFrequency := make(map[string]int)
	var totalLength int

	for i, row := range rows {
		index.ids[i] = row.SessionID
		tokens := compositeTokens(row)
		index.lengths[i] = len(tokens)
		totalLength += len(tokens)

		frequency := make(map[string]int)
		seen := make(map[string]bool)
		for _, token := range tokens {
			frequency[token]++
			if !seen[token] {
				seen[token] = true
				documentFrequency[token]++
			}
		}
		index.termFrequencies[i] = frequency
	}

	if len(rows) > 0 {
		index.averageLength = float64(totalLength) / float64(len(rows))
	}

	documentCount := float64(len(rows))
	for term, frequency := range documentFrequency {
		idf := math.Log(1 + (documentCount-float64(frequency)+0.5)/(float64(frequency)+0.5))
		if idf < 0 {
			idf = paramEpsilon
		}
		index.idf[term] = idf
	}
	return index
}

// Search returns up to limit sessions ranked by relevance. An empty
// query, or one matching nothing, yields no results.
func (index *Index) Search(query string, limit int) []Result {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var hits []Result
	for i := range index.ids {
		score := index.score(i, queryTokens)
		if score > 0 {
			hits = append(hits, Result{SessionID: index.ids[i], Score: score})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score == hits[b].Score {
			return hits[a].SessionID < hits[b].SessionID
		}
		return hits[a].Score > hits[b].Score
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func (index *Index) score(document int, queryTokens []string) float64 {
	termFrequency := index.termFrequencies[document]
	length := float64(index.lengths[document])

	var score float64
	for _, token := range queryTokens {
		idf, exists := index.idf[token]
		if !exists {
			continue
		}
		frequency := float64(termFrequency[token])
		if frequency == 0 {
			continue
		}
		numerator := frequency * (paramK1 + 1)
		denominator := frequency + paramK1*(1-paramB+paramB*length/index.averageLength)
		score += idf * numerator / denominator
	}
	return score
}

// compositeTokens repeats each field's tokens by its weight, a simple
// alternative to per-field BM25 that works well for small corpora.
func compositeTokens(row store.SearchRow) []string {
	var tokens []string
	fields := []struct {
		text   string
		weight int
	}{
		{row.Summary, weightSummary},
		{row.Project, weightProject},
		{row.Text, weightBody},
	}
	for _, field := range fields {
		fieldTokens := tokenize(field.text)
		for i := 0; i < field.weight; i++ {
			tokens = append(tokens, fieldTokens...)
		}
	}
	return tokens
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
