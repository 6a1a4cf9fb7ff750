package score

import (
	"context"
	"strings"
	"testing"

	"clausecheck/internal/model"
)

func mustClause(t *testing.T, id, text string) model.Clause {
	t.Helper()
	c, err := model.NewClause(id, "Title", "General", text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return c
}

func strongMatch(clauseID string) model.Match {
	return model.NewMatch(clauseID, "Article 33", "article-33", "snippet", 0.9)
}

func TestScorer_BreachWithoutDeadline(t *testing.T) {
	scorer := NewScorer(nil)
	clause := mustClause(t, "C001", "In the event of a data breach the processor will inform the controller eventually.")

	results := scorer.Score(context.Background(), []model.Clause{clause}, []model.Match{strongMatch("C001")})
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	r := results[0]
	// Base 20 + 25 for the missing 72-hour window.
	if r.RiskScore < 45 {
		t.Errorf("Expected score >= 45 when breach rule fires, got %d", r.RiskScore)
	}

	found := false
	for _, issue := range r.Issues {
		if strings.Contains(issue, "72-hour") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 72-hour notification issue, got %v", r.Issues)
	}
}

func TestScorer_BreachWithDeadlineDoesNotFire(t *testing.T) {
	scorer := NewScorer(nil)
	clause := mustClause(t, "C001", "Any breach shall be notified to the controller within 72 hours of discovery.")

	results := scorer.Score(context.Background(), []model.Clause{clause}, []model.Match{strongMatch("C001")})
	for _, issue := range results[0].Issues {
		if strings.Contains(issue, "72-hour") {
			t.Errorf("Expected breach rule not to fire when 72 is present, got %v", results[0].Issues)
		}
	}
}

func TestScorer_VagueSecurity(t *testing.T) {
	scorer := NewScorer(nil)

	vague := mustClause(t, "C001", "The vendor maintains security appropriate to its business.")
	specific := mustClause(t, "C002", "Security measures include encryption at rest and access control reviews.")

	results := scorer.Score(context.Background(),
		[]model.Clause{vague, specific},
		[]model.Match{strongMatch("C001"), strongMatch("C002")})

	if results[0].RiskScore != 40 { // 20 base + 20 vague security
		t.Errorf("Expected score 40 for vague security, got %d", results[0].RiskScore)
	}
	if results[1].RiskScore != 20 { // base only
		t.Errorf("Expected base score for specific security clause, got %d", results[1].RiskScore)
	}
}

func TestScorer_HighRiskAndHedgingTerms(t *testing.T) {
	scorer := NewScorer(nil)
	clause := mustClause(t, "C001",
		"Provider may sell customer data without notice and will use commercially reasonable efforts otherwise.")

	results := scorer.Score(context.Background(), []model.Clause{clause}, []model.Match{strongMatch("C001")})
	r := results[0]

	// 20 base + 20 high-risk + 10 hedging.
	if r.RiskScore != 50 {
		t.Errorf("Expected score 50, got %d", r.RiskScore)
	}
	if r.Severity != model.SeverityMedium {
		t.Errorf("Expected medium severity at 50, got %s", r.Severity)
	}
}

func TestScorer_WeakAlignment(t *testing.T) {
	scorer := NewScorer(nil)
	clause := mustClause(t, "C001", "The parties shall meet quarterly to review the roadmap together.")

	weak := model.NewMatch("C001", "Article 6", "lawfulness", "snippet", 0.10)
	results := scorer.Score(context.Background(), []model.Clause{clause}, []model.Match{weak})

	r := results[0]
	if r.RiskScore != 35 { // 20 base + 15 weak alignment
		t.Errorf("Expected score 35 for weak alignment, got %d", r.RiskScore)
	}

	found := false
	for _, issue := range r.Issues {
		if strings.Contains(issue, "Weak GDPR alignment") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected weak-alignment issue, got %v", r.Issues)
	}

	// No matches at all also counts as weak alignment.
	results = scorer.Score(context.Background(), []model.Clause{clause}, nil)
	if results[0].RiskScore != 35 {
		t.Errorf("Expected score 35 with no matches, got %d", results[0].RiskScore)
	}
}

func TestScorer_NoRuleFiredPlaceholderIssue(t *testing.T) {
	scorer := NewScorer(nil)
	clause := mustClause(t, "C001", "The governing law of this agreement is the law of Ireland.")

	results := scorer.Score(context.Background(), []model.Clause{clause}, []model.Match{strongMatch("C001")})
	r := results[0]

	if r.RiskScore != BaseScore {
		t.Errorf("Expected base score when no rule fires, got %d", r.RiskScore)
	}
	if len(r.Issues) != 1 {
		t.Fatalf("Expected exactly one placeholder issue, got %v", r.Issues)
	}
	if !strings.Contains(r.Issues[0], "No significant") {
		t.Errorf("Expected placeholder issue, got %q", r.Issues[0])
	}
}

func TestScorer_ScoreBoundsAndSeverity(t *testing.T) {
	scorer := NewScorer(nil)

	// Fires every rule: breach w/o 72, vague security, high-risk term,
	// hedging term, weak alignment (no matches).
	clause := mustClause(t, "C001",
		"On breach we apply reasonable security and may sell data without notice.")

	results := scorer.Score(context.Background(), []model.Clause{clause}, nil)
	r := results[0]

	// 20+25+20+20+10+15 = 110, clamped to 100.
	if r.RiskScore != 100 {
		t.Errorf("Expected clamped score 100, got %d", r.RiskScore)
	}
	if r.Severity != model.SeverityForScore(r.RiskScore) {
		t.Errorf("Expected severity consistent with score, got %s for %d", r.Severity, r.RiskScore)
	}
	if r.Severity != model.SeverityHigh {
		t.Errorf("Expected high severity when all rules fire, got %s", r.Severity)
	}
}

func TestSeverityThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  model.Severity
	}{
		{0, model.SeverityLow},
		{39, model.SeverityLow},
		{40, model.SeverityMedium},
		{69, model.SeverityMedium},
		{70, model.SeverityHigh},
		{100, model.SeverityHigh},
	}
	for _, c := range cases {
		if got := model.SeverityForScore(c.score); got != c.want {
			t.Errorf("Expected severity %s for score %d, got %s", c.want, c.score, got)
		}
	}
}

func TestBestMatch_DeterministicTieBreak(t *testing.T) {
	matches := []model.Match{
		model.NewMatch("C001", "Article 5", "principles", "first", 0.5),
		model.NewMatch("C001", "Article 6", "lawfulness", "second", 0.5),
	}

	best := bestMatch(matches)
	if best == nil || best.Article != "Article 5" {
		t.Errorf("Expected array order to break ties, got %v", best)
	}

	if got := bestMatch(nil); got != nil {
		t.Errorf("Expected nil best match for empty input, got %v", got)
	}
}
