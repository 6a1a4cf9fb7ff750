package model

// Severity is the coarse risk bucket derived from the numeric risk score.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityForScore maps a clamped risk score to its severity bucket.
// This is the only place the thresholds live.
func SeverityForScore(score int) Severity {
	switch {
	case score >= 70:
		return SeverityHigh
	case score >= 40:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// RiskResult is the deterministic rule-evaluation outcome for one clause.
// Exactly one per clause; the issue list is never empty.
type RiskResult struct {
	ClauseID  string   `json:"clause_id"`
	RiskScore int      `json:"risk_score"`
	Issues    []string `json:"issues"`
	Severity  Severity `json:"severity"`
}

// NewRiskResult clamps the score into [0,100] and derives the severity
// from the clamped value, so severity is always consistent with the score.
func NewRiskResult(clauseID string, score int, issues []string) RiskResult {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return RiskResult{
		ClauseID:  clauseID,
		RiskScore: score,
		Issues:    issues,
		Severity:  SeverityForScore(score),
	}
}

// SuggestedFix is replacement language proposed for a clause whose risk
// score crossed the fix threshold. Zero or one per clause.
type SuggestedFix struct {
	ClauseID           string   `json:"clause_id"`
	Rationale          string   `json:"rationale"`
	ReferencedArticles []string `json:"referenced_articles"`
	SuggestedText      string   `json:"suggested_text"`
}
