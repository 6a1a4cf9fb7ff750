// Package llm holds the optional rationale enrichment: a best-effort
// external call that produces one short compliance sentence per risky
// clause. The note never affects scoring and failures never surface.
package llm

import (
	"context"
	"fmt"
)

// Provider defines the interface for rationale-generating LLM backends.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Rationale generates one short compliance rationale sentence
	Rationale(ctx context.Context, req RationaleRequest) (string, error)
}

// RationaleRequest contains the input for rationale generation.
type RationaleRequest struct {
	// ClauseText is the clause under assessment (truncated before prompting)
	ClauseText string

	// Article is the top matched regulatory article, e.g. "Article 33"
	Article string

	// Score is the already-final rule score; the note must not change it
	Score int
}

// BuildPrompt constructs the rationale prompt.
func BuildPrompt(req RationaleRequest) string {
	clause := req.ClauseText
	if len(clause) > 450 {
		clause = clause[:450]
	}
	return fmt.Sprintf(
		"Provide one short compliance rationale sentence for this clause risk assessment.\n"+
			"Clause: %s\n"+
			"Top GDPR match: %s\n"+
			"Rule score: %d\n"+
			"Keep it factual, under 35 words, no legal advice disclaimer.",
		clause, req.Article, req.Score)
}
