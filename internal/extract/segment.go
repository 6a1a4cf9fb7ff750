package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"clausecheck/internal/model"
)

// DefaultMinChars is the minimum block size below which a segment is merged
// into its predecessor.
const DefaultMinChars = 60

var (
	numberedSectionRe = regexp.MustCompile(`^\d{1,2}(?:\.\d+)?[.)]\s+\S`)
	titleLineRe       = regexp.MustCompile(`^[A-Z][A-Za-z0-9,&/'()\- ]{2,70}:?$`)
	numberingPrefixRe = regexp.MustCompile(`^\d+(?:\.\d+)?[.)]\s*`)
)

// headingChrome is navigation chrome that marks a section boundary in
// web-exported documents.
var headingChrome = map[string]struct{}{
	"TRY GROK":  {},
	"PRODUCTS":  {},
	"COMPANY":   {},
	"RESOURCES": {},
}

// categoryKeywords maps clause text to a coarse category. Ordered; the
// first case-insensitive substring match wins.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"security", "Security"},
	{"breach", "Breach Notification"},
	{"processor", "Processor Obligations"},
	{"subprocessor", "Subprocessor"},
	{"retention", "Data Retention"},
	{"transfer", "International Transfer"},
	{"legal basis", "Legal Basis"},
	{"consent", "Consent"},
	{"rights", "Data Subject Rights"},
	{"audit", "Audit"},
}

// Segmenter partitions normalized text into clause-like blocks.
type Segmenter struct {
	minChars int
}

// NewSegmenter creates a segmenter. minChars <= 0 selects the default.
func NewSegmenter(minChars int) *Segmenter {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &Segmenter{minChars: minChars}
}

// ExtractClauses normalizes raw text and partitions it into clauses with
// sequential ids C001, C002, ... in document order. The result is never
// empty: if segmentation yields nothing, the whole normalized text becomes
// a single clause.
func (s *Segmenter) ExtractClauses(rawText string) ([]model.Clause, error) {
	text := NormalizeText(rawText)
	blocks := s.splitBlocks(text)
	if len(blocks) == 0 {
		blocks = []string{text}
	}

	clauses := make([]model.Clause, 0, len(blocks))
	for i, block := range blocks {
		idx := i + 1
		clause, err := model.NewClause(
			fmt.Sprintf("C%03d", idx),
			titleForBlock(block, idx),
			categorize(block),
			block,
		)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

// splitBlocks slices text at heading-like lines, falling back to
// paragraph boundaries when no headings are found.
func (s *Segmenter) splitBlocks(text string) []string {
	lines := strings.Split(text, "\n")
	var starts []int
	pos := 0
	for _, line := range lines {
		if isHeadingLine(line) {
			starts = append(starts, pos)
		}
		pos += len(line) + 1
	}
	starts = dedupeSorted(starts)

	if len(starts) > 0 {
		spans := append(append([]int{}, starts...), len(text))
		var blocks []string
		for i := 0; i < len(starts); i++ {
			chunk := strings.TrimSpace(text[spans[i]:spans[i+1]])
			if len(chunk) >= s.minChars {
				blocks = append(blocks, chunk)
			}
		}
		blocks = mergeSmallBlocks(blocks, s.minChars)
		if len(blocks) > 0 {
			return blocks
		}
	}

	// Fallback: paragraph blocks with soft merge.
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if len(p) >= s.minChars {
			paras = append(paras, p)
		}
	}
	return mergeSmallBlocks(paras, s.minChars)
}

// isHeadingLine reports whether a line looks like a section boundary:
// a numbered-section prefix, a short Title-Case or ALL-CAPS phrase, a
// timestamp or URL artifact, or a known chrome literal.
func isHeadingLine(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return false
	}

	if numberedSectionRe.MatchString(s) {
		return true
	}

	if titleLineRe.MatchString(s) {
		words := strings.Fields(strings.ReplaceAll(s, ":", ""))
		if len(words) >= 1 && len(words) <= 10 && allTitleCased(words) {
			return true
		}
	}

	if timestampRe.MatchString(s) || bareURLRe.MatchString(s) {
		return true
	}

	_, ok := headingChrome[s]
	return ok
}

func allTitleCased(words []string) bool {
	for _, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)[0]
		if !unicode.IsUpper(r) && !isAllUpper(w) {
			return false
		}
	}
	return true
}

func isAllUpper(w string) bool {
	cased := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// mergeSmallBlocks folds any block shorter than minChars into the previous
// block so no returned block (except possibly the first) is spuriously tiny.
func mergeSmallBlocks(blocks []string, minChars int) []string {
	if len(blocks) == 0 {
		return blocks
	}
	var merged []string
	for _, block := range blocks {
		if len(merged) > 0 && len(block) < minChars {
			prev := strings.TrimRight(merged[len(merged)-1], " \n")
			merged[len(merged)-1] = strings.TrimSpace(prev + "\n" + strings.TrimLeft(block, " \n"))
		} else {
			merged = append(merged, block)
		}
	}
	return merged
}

// titleForBlock derives a clause title from the block's first line.
func titleForBlock(block string, idx int) string {
	line := block
	if i := strings.Index(block, "\n"); i >= 0 {
		line = block[:i]
	}
	line = strings.TrimSpace(line)
	line = numberingPrefixRe.ReplaceAllString(line, "")
	if runes := []rune(line); len(runes) > 80 {
		line = string(runes[:80])
	}
	line = strings.Trim(line, " :.-")
	if len([]rune(line)) < 5 {
		return fmt.Sprintf("Clause %d", idx)
	}
	return line
}

// categorize picks the clause category by first-match keyword lookup.
func categorize(text string) string {
	lower := strings.ToLower(text)
	for _, kc := range categoryKeywords {
		if strings.Contains(lower, kc.keyword) {
			return kc.category
		}
	}
	return "General"
}

func dedupeSorted(vals []int) []int {
	if len(vals) == 0 {
		return vals
	}
	sort.Ints(vals)
	out := vals[:1]
	for _, v := range vals[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
