package model

import (
	"fmt"
	"strings"
)

// Clause is the atomic unit of analysis: a contiguous, heading-bounded
// span of contract text. Created by the segmenter in document order and
// immutable afterwards.
type Clause struct {
	ClauseID string `json:"clause_id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// NewClause validates and constructs a Clause. An empty clause id is a
// programming defect, not a recoverable condition.
func NewClause(clauseID, title, category, text string) (Clause, error) {
	if strings.TrimSpace(clauseID) == "" {
		return Clause{}, fmt.Errorf("clause id cannot be empty")
	}
	return Clause{
		ClauseID: clauseID,
		Title:    title,
		Category: category,
		Text:     text,
	}, nil
}

// RegulatoryChunk is one fixed-size overlapping window of regulatory source
// text, the unit indexed for retrieval. Persisted alongside its embedding.
type RegulatoryChunk struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Article string `json:"article"`
	Topic   string `json:"topic"`
	Source  string `json:"source"`
}

// Match links a clause to a retrieved regulatory chunk.
type Match struct {
	ClauseID        string  `json:"clause_id"`
	Article         string  `json:"article"`
	Topic           string  `json:"topic"`
	Snippet         string  `json:"snippet"`
	SimilarityScore float64 `json:"similarity_score"`
}

// SnippetLimit is the maximum length of a match snippet.
const SnippetLimit = 280

// NewMatch constructs a Match, clamping the similarity into [0,1] and
// truncating the snippet to SnippetLimit characters.
func NewMatch(clauseID, article, topic, snippet string, similarity float64) Match {
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	if runes := []rune(snippet); len(runes) > SnippetLimit {
		snippet = string(runes[:SnippetLimit])
	}
	return Match{
		ClauseID:        clauseID,
		Article:         article,
		Topic:           topic,
		Snippet:         snippet,
		SimilarityScore: similarity,
	}
}
