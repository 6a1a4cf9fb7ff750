package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clausecheck/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name     string
	response string
	err      error
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Rationale(ctx context.Context, req RationaleRequest) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestNewRationalizer_Disabled(t *testing.T) {
	r := NewRationalizer(model.LLMConfig{Enabled: false, APIKey: "sk-test"})
	if r != nil {
		t.Error("Expected nil rationalizer when disabled")
	}

	r = NewRationalizer(model.LLMConfig{Enabled: true, APIKey: ""})
	if r != nil {
		t.Error("Expected nil rationalizer without a credential")
	}
}

func TestRationalizer_NilIsSafe(t *testing.T) {
	var r *Rationalizer

	if note := r.Note(context.Background(), "clause text", "Article 33", 45); note != "" {
		t.Errorf("Expected empty note from nil rationalizer, got %q", note)
	}
	if name := r.ProviderName(); name != "" {
		t.Errorf("Expected empty provider name from nil rationalizer, got %q", name)
	}
}

func TestRationalizer_ProviderFailureIsSwallowed(t *testing.T) {
	r := &Rationalizer{provider: &MockProvider{name: "mock", err: errors.New("boom")}}

	if note := r.Note(context.Background(), "clause", "Article 32", 60); note != "" {
		t.Errorf("Expected empty note on provider failure, got %q", note)
	}
}

func TestRationalizer_ReturnsProviderSentence(t *testing.T) {
	r := &Rationalizer{provider: &MockProvider{name: "mock", response: "Clause lacks a notification deadline."}}

	note := r.Note(context.Background(), "clause", "Article 33", 45)
	if note != "Clause lacks a notification deadline." {
		t.Errorf("Expected provider sentence, got %q", note)
	}
}

func TestBuildPrompt_TruncatesClause(t *testing.T) {
	req := RationaleRequest{
		ClauseText: strings.Repeat("x", 1000),
		Article:    "Article 28",
		Score:      55,
	}
	prompt := BuildPrompt(req)

	if strings.Contains(prompt, strings.Repeat("x", 451)) {
		t.Error("Expected clause text truncated to 450 chars in prompt")
	}
	if !strings.Contains(prompt, "Article 28") {
		t.Error("Expected article in prompt")
	}
	if !strings.Contains(prompt, "Rule score: 55") {
		t.Error("Expected score in prompt")
	}
}
