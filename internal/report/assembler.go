// Package report assembles pipeline outputs into a single persisted
// document report. Assembly validates referential integrity: every risk
// result, match, and fix must point at a clause present in the report.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"clausecheck/internal/model"
)

// keyFindingLimit caps how many clauses the executive summary calls out.
const keyFindingLimit = 3

// Assembler builds immutable PipelineReport values.
type Assembler struct{}

// NewAssembler creates an assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble combines the stage outputs for one document. It fails when any
// cross-reference points at a clause id that is not in clauses.
func (a *Assembler) Assemble(sourceFile, documentHash string, clauses []model.Clause, matches []model.Match, results []model.RiskResult, fixes []model.SuggestedFix) (*model.PipelineReport, error) {
	known := make(map[string]bool, len(clauses))
	for _, c := range clauses {
		known[c.ClauseID] = true
	}

	for _, r := range results {
		if !known[r.ClauseID] {
			return nil, fmt.Errorf("risk result references unknown clause %q", r.ClauseID)
		}
	}
	for _, m := range matches {
		if !known[m.ClauseID] {
			return nil, fmt.Errorf("match references unknown clause %q", m.ClauseID)
		}
	}
	for _, f := range fixes {
		if !known[f.ClauseID] {
			return nil, fmt.Errorf("suggested fix references unknown clause %q", f.ClauseID)
		}
	}

	return &model.PipelineReport{
		SourceFile:       sourceFile,
		DocumentHash:     documentHash,
		Clauses:          clauses,
		GDPRMatches:      matches,
		RiskScores:       results,
		SuggestedFixes:   fixes,
		ExecutiveSummary: summarize(results),
	}, nil
}

// summarize rolls the per-clause results up into the executive view. The
// overall score is the rounded mean, not the maximum, so one bad clause
// does not dominate a long clean document.
func summarize(results []model.RiskResult) model.ExecutiveSummary {
	if len(results) == 0 {
		return model.ExecutiveSummary{
			OverallRiskScore: 0,
			KeyFindings:      []string{"No clauses detected."},
		}
	}

	total := 0
	high := 0
	for _, r := range results {
		total += r.RiskScore
		if r.Severity == model.SeverityHigh {
			high++
		}
	}
	overall := int(math.Round(float64(total) / float64(len(results))))

	ranked := make([]model.RiskResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RiskScore > ranked[j].RiskScore
	})
	if len(ranked) > keyFindingLimit {
		ranked = ranked[:keyFindingLimit]
	}

	findings := make([]string, 0, len(ranked))
	for _, r := range ranked {
		issues := r.Issues
		if len(issues) > 2 {
			issues = issues[:2]
		}
		findings = append(findings, fmt.Sprintf("%s: score=%d, issues=%s", r.ClauseID, r.RiskScore, strings.Join(issues, "; ")))
	}

	return model.ExecutiveSummary{
		OverallRiskScore: overall,
		TotalClauses:     len(results),
		HighRiskClauses:  high,
		KeyFindings:      findings,
	}
}
