package model

// ExecutiveSummary aggregates all risk results for a document.
type ExecutiveSummary struct {
	OverallRiskScore int      `json:"overall_risk_score"`
	TotalClauses     int      `json:"total_clauses"`
	HighRiskClauses  int      `json:"high_risk_clauses"`
	KeyFindings      []string `json:"key_findings"`
}

// PipelineReport is the root aggregate produced by one pipeline run.
// Immutable once assembled; persisted as JSON named by the document hash.
type PipelineReport struct {
	SourceFile       string           `json:"source_file"`
	DocumentHash     string           `json:"document_hash"`
	Clauses          []Clause         `json:"clauses"`
	GDPRMatches      []Match          `json:"gdpr_matches"`
	RiskScores       []RiskResult     `json:"risk_scores"`
	SuggestedFixes   []SuggestedFix   `json:"suggested_fixes"`
	ExecutiveSummary ExecutiveSummary `json:"executive_summary"`
}
