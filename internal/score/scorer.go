// Package score evaluates per-clause compliance risk with a fixed,
// deterministic rule set. Rules are additive and evaluated unconditionally;
// the accumulated score is clamped to [0,100] only at the end, so the
// combination of fired rules decides the severity bucket.
package score

import (
	"context"
	"sort"
	"strings"

	"clausecheck/internal/llm"
	"clausecheck/internal/model"
)

// BaseScore is the starting risk score before any rule fires.
const BaseScore = 20

// WeakAlignmentThreshold is the best-match similarity below which a
// clause is considered poorly grounded in the regulation.
const WeakAlignmentThreshold = 0.25

// highRiskTerms is overly broad sale/sharing/unlimited/no-notice phrasing.
var highRiskTerms = []string{"sell", "share with any third party", "unlimited", "without notice"}

// lowConfidenceTerms is hedging language that weakens enforceability.
var lowConfidenceTerms = []string{"reasonable", "best effort", "as needed", "commercially reasonable"}

// Scorer evaluates clauses against the rule set. State-free per clause:
// each result is purely a function of the clause text and its matches.
type Scorer struct {
	rationalizer *llm.Rationalizer // nil when rationale enrichment is disabled
}

// NewScorer creates a scorer. The rationalizer is optional; pass nil to
// skip the non-authoritative LLM note.
func NewScorer(rationalizer *llm.Rationalizer) *Scorer {
	return &Scorer{rationalizer: rationalizer}
}

// Score produces exactly one RiskResult per clause, in clause order.
func (s *Scorer) Score(ctx context.Context, clauses []model.Clause, matches []model.Match) []model.RiskResult {
	matchMap := make(map[string][]model.Match)
	for _, m := range matches {
		matchMap[m.ClauseID] = append(matchMap[m.ClauseID], m)
	}

	results := make([]model.RiskResult, 0, len(clauses))
	for _, clause := range clauses {
		results = append(results, s.scoreClause(ctx, clause, matchMap[clause.ClauseID]))
	}
	return results
}

func (s *Scorer) scoreClause(ctx context.Context, clause model.Clause, clauseMatches []model.Match) model.RiskResult {
	text := strings.ToLower(clause.Text)
	scoreVal := BaseScore
	var issues []string

	if strings.Contains(text, "breach") && !strings.Contains(text, "72") {
		scoreVal += 25
		issues = append(issues, "Breach clause does not mention 72-hour notification window (GDPR Art. 33).")
	}

	if strings.Contains(text, "security") && !strings.Contains(text, "encryption") && !strings.Contains(text, "access control") {
		scoreVal += 20
		issues = append(issues, "Security obligations may be too vague for GDPR Art. 32.")
	}

	if containsAny(text, highRiskTerms) {
		scoreVal += 20
		issues = append(issues, "Overly broad data use/sharing language detected.")
	}

	if containsAny(text, lowConfidenceTerms) {
		scoreVal += 10
		issues = append(issues, "Ambiguous wording may reduce enforceability.")
	}

	best := bestMatch(clauseMatches)
	if best == nil || best.SimilarityScore < WeakAlignmentThreshold {
		scoreVal += 15
		issues = append(issues, "Weak GDPR alignment based on semantic match.")
	}

	if len(issues) == 0 {
		issues = append(issues, "No significant GDPR risks detected by the rule set.")
	}

	result := model.NewRiskResult(clause.ClauseID, scoreVal, issues)

	// Non-scoring enrichment: appended after clamping so it can never
	// influence score or severity, and silently omitted on any failure.
	if s.rationalizer != nil {
		article := "Unknown article"
		if best != nil {
			article = best.Article
		}
		if note := s.rationalizer.Note(ctx, clause.Text, article, result.RiskScore); note != "" {
			result.Issues = append(result.Issues, "LLM note: "+note)
		}
	}

	return result
}

// bestMatch returns the highest-similarity match, ties broken by array
// order so the choice is deterministic.
func bestMatch(matches []model.Match) *model.Match {
	if len(matches) == 0 {
		return nil
	}
	ranked := make([]model.Match, len(matches))
	copy(ranked, matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})
	return &ranked[0]
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
