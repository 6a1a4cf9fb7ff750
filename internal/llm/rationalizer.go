package llm

import (
	"context"

	"clausecheck/internal/model"
)

// Rationalizer wraps a provider with the pipeline's best-effort contract:
// Note always returns a usable value (possibly empty) and never an error.
type Rationalizer struct {
	provider Provider
}

// NewRationalizer creates a rationalizer from configuration. Returns nil
// when enrichment is disabled or no credential is available; callers treat
// a nil rationalizer as "no note".
func NewRationalizer(config model.LLMConfig) *Rationalizer {
	if !config.Enabled || config.APIKey == "" {
		return nil
	}
	provider, err := NewOpenAIProvider(config)
	if err != nil {
		return nil
	}
	return &Rationalizer{provider: provider}
}

// ProviderName returns the underlying provider name.
func (r *Rationalizer) ProviderName() string {
	if r == nil || r.provider == nil {
		return ""
	}
	return r.provider.Name()
}

// Note returns one rationale sentence, or "" when the provider is absent,
// fails, or returns nothing. Failures are swallowed here: the pipeline's
// numeric output must never depend on this call.
func (r *Rationalizer) Note(ctx context.Context, clauseText, article string, score int) string {
	if r == nil || r.provider == nil {
		return ""
	}
	note, err := r.provider.Rationale(ctx, RationaleRequest{
		ClauseText: clauseText,
		Article:    article,
		Score:      score,
	})
	if err != nil {
		return ""
	}
	return note
}
