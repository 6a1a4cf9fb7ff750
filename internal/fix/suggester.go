// Package fix turns high-risk scoring results into grounded rewrite
// suggestions. Suggestions cite the articles retrieved for the clause and
// never invent references the retrieval step did not surface.
package fix

import (
	"fmt"
	"sort"
	"strings"

	"clausecheck/internal/model"
)

// SuggestionThreshold is the minimum risk score that warrants a fix.
const SuggestionThreshold = 40

// contextLimit caps how much of the original clause is echoed back into
// the suggested text.
const contextLimit = 120

// maxClauseContext is the clause length above which no context excerpt is
// embedded at all; long clauses carry too much noise to quote usefully.
const maxClauseContext = 350

// topArticles is how many retrieved matches contribute article references.
const topArticles = 3

// articleGuidance maps a GDPR article to the remediation language a
// suggestion should steer towards.
var articleGuidance = map[string]string{
	"Article 28": "processing under documented controller instructions and equivalent subprocessor obligations",
	"Article 32": "appropriate technical and organizational security measures (for example encryption and access controls)",
	"Article 33": "breach notification without undue delay and, where required, within 72 hours",
	"Article 5":  "purpose limitation, data minimization, and storage limitation principles",
	"Article 6":  "clear lawful basis for processing operations",
}

// defaultArticles anchor a suggestion when retrieval produced nothing
// usable for the clause.
var defaultArticles = []string{"Article 32", "Article 33"}

// Suggester produces rewrite suggestions for clauses whose risk score
// crossed the threshold.
type Suggester struct {
	threshold int
}

// NewSuggester creates a suggester with the default threshold.
func NewSuggester() *Suggester {
	return &Suggester{threshold: SuggestionThreshold}
}

// Suggest returns one fix per at-risk clause, in clause order. Clauses
// scoring below the threshold produce no suggestion.
func (s *Suggester) Suggest(clauses []model.Clause, matches []model.Match, results []model.RiskResult) []model.SuggestedFix {
	clauseByID := make(map[string]model.Clause, len(clauses))
	for _, c := range clauses {
		clauseByID[c.ClauseID] = c
	}
	matchesByID := make(map[string][]model.Match)
	for _, m := range matches {
		matchesByID[m.ClauseID] = append(matchesByID[m.ClauseID], m)
	}

	var fixes []model.SuggestedFix
	for _, result := range results {
		if result.RiskScore < s.threshold {
			continue
		}
		clause, ok := clauseByID[result.ClauseID]
		if !ok {
			continue
		}
		fixes = append(fixes, buildFix(clause, matchesByID[result.ClauseID]))
	}
	return fixes
}

func buildFix(clause model.Clause, clauseMatches []model.Match) model.SuggestedFix {
	articles := referencedArticles(clauseMatches)

	var lines []string
	for _, article := range articles {
		guidance, ok := articleGuidance[article]
		if !ok {
			guidance = "explicit GDPR-aligned controls tied to the clause scope"
		}
		lines = append(lines, fmt.Sprintf("%s: add language on %s.", article, guidance))
	}

	text := "Replace clause with GDPR-grounded language. " + strings.Join(lines, " ") +
		" Use measurable obligations, explicit timelines, and controller-approval controls for subprocessors."

	trimmed := strings.TrimSpace(clause.Text)
	if len(trimmed) > 0 && len(trimmed) < maxClauseContext {
		excerpt := trimmed
		if runes := []rune(excerpt); len(runes) > contextLimit {
			excerpt = string(runes[:contextLimit])
		}
		text += fmt.Sprintf(" Existing clause context: %s.", excerpt)
	}

	return model.SuggestedFix{
		ClauseID:           clause.ClauseID,
		Rationale:          "Grounded in top RAG-matched GDPR articles for this clause.",
		ReferencedArticles: articles,
		SuggestedText:      text,
	}
}

// referencedArticles extracts the distinct articles from the strongest
// matches, sorted for stable output. Falls back to the default anchors
// when no match carries an article.
func referencedArticles(clauseMatches []model.Match) []string {
	ranked := make([]model.Match, len(clauseMatches))
	copy(ranked, clauseMatches)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})
	if len(ranked) > topArticles {
		ranked = ranked[:topArticles]
	}

	seen := make(map[string]bool)
	var articles []string
	for _, m := range ranked {
		article := strings.TrimSpace(m.Article)
		if article == "" || seen[article] {
			continue
		}
		seen[article] = true
		articles = append(articles, article)
	}
	if len(articles) == 0 {
		return append([]string(nil), defaultArticles...)
	}
	sort.Strings(articles)
	return articles
}
