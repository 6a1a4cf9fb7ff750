package extract

import (
	"regexp"
	"strings"
)

// Noise patterns seen in browser/PDF exports of contract pages.
var (
	timestampRe  = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4},\s+\d{1,2}:\d{2}\s+[AP]M\b`)
	bareURLRe    = regexp.MustCompile(`^https?://\S+$`)
	paginationRe = regexp.MustCompile(`^\d+/\d+\s*$`)
	hspaceRe     = regexp.MustCompile(`[\t ]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// chromeLines is UI chrome that export tools leave behind as bare lines.
var chromeLines = map[string]struct{}{
	"TRY GROK":    {},
	"TRY GROK ON": {},
	"Web":         {},
	"iOS":         {},
	"Android":     {},
}

// NormalizeText strips platform noise from raw extracted text: line endings
// become \n, runs of horizontal whitespace collapse to one space, runs of
// blank lines collapse to a single blank line, and known noise lines
// (timestamps, bare URLs, pagination markers, UI chrome) are dropped.
// Empty input yields empty output.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = hspaceRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			kept = append(kept, "")
			continue
		}
		if timestampRe.MatchString(s) || bareURLRe.MatchString(s) || paginationRe.MatchString(s) {
			continue
		}
		if _, ok := chromeLines[s]; ok {
			continue
		}
		kept = append(kept, line)
	}

	text = strings.Join(kept, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
