package extract

import (
	"strings"
	"testing"
)

const clauseBody = "The processor shall implement appropriate technical and organizational measures to protect personal data."

func TestSegmenter_NumberedHeadings(t *testing.T) {
	seg := NewSegmenter(0)

	text := strings.Join([]string{
		"1. Data Security",
		clauseBody,
		"",
		"2. Breach Notification",
		"The processor shall notify the controller without undue delay after becoming aware of a personal data breach.",
	}, "\n")

	clauses, err := seg.ExtractClauses(text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(clauses) != 2 {
		t.Fatalf("Expected 2 clauses, got %d", len(clauses))
	}

	if clauses[0].ClauseID != "C001" || clauses[1].ClauseID != "C002" {
		t.Errorf("Expected sequential ids C001, C002; got %s, %s", clauses[0].ClauseID, clauses[1].ClauseID)
	}

	if clauses[0].Title != "Data Security" {
		t.Errorf("Expected numbering prefix stripped from title, got %q", clauses[0].Title)
	}

	if clauses[0].Category != "Security" {
		t.Errorf("Expected Security category, got %q", clauses[0].Category)
	}
	if clauses[1].Category != "Breach Notification" {
		t.Errorf("Expected Breach Notification category, got %q", clauses[1].Category)
	}
}

func TestSegmenter_SingleParagraphYieldsOneClause(t *testing.T) {
	seg := NewSegmenter(0)

	text := "the parties agree that all personal data shall be handled with care and in accordance with applicable law at all times."

	clauses, err := seg.ExtractClauses(text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(clauses) != 1 {
		t.Fatalf("Expected exactly 1 clause for plain paragraph input, got %d", len(clauses))
	}
	if clauses[0].Text != text {
		t.Errorf("Expected clause text to equal the whole trimmed input")
	}
}

func TestSegmenter_MergesSmallBlocks(t *testing.T) {
	blocks := []string{
		strings.Repeat("a", 80),
		"tiny",
		strings.Repeat("b", 80),
	}

	merged := mergeSmallBlocks(blocks, 60)

	if len(merged) != 2 {
		t.Fatalf("Expected small block merged into previous, got %d blocks", len(merged))
	}
	if !strings.Contains(merged[0], "tiny") {
		t.Error("Expected the small block folded into its predecessor")
	}
	for i, b := range merged {
		if i > 0 && len(b) < 60 {
			t.Errorf("Expected no block after the first below min_chars, block %d has %d", i, len(b))
		}
	}
}

func TestSegmenter_ParagraphFallback(t *testing.T) {
	seg := NewSegmenter(0)

	para1 := "the supplier may retain records for as long as it considers necessary for its own business purposes."
	para2 := "either party may terminate this agreement with thirty days written notice to the other party hereto."
	clauses, err := seg.ExtractClauses(para1 + "\n\n" + para2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(clauses) != 2 {
		t.Fatalf("Expected 2 paragraph clauses, got %d", len(clauses))
	}
}

func TestSegmenter_PlaceholderTitle(t *testing.T) {
	seg := NewSegmenter(0)

	// First line reduces to under 5 chars after trimming.
	text := "3. A:\nthe data importer shall cooperate with any supervisory authority inquiry without delay."

	clauses, err := seg.ExtractClauses(text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(clauses) == 0 {
		t.Fatal("Expected at least one clause")
	}
	if !strings.HasPrefix(clauses[0].Title, "Clause ") {
		t.Errorf("Expected generated placeholder title, got %q", clauses[0].Title)
	}
}

func TestIsHeadingLine(t *testing.T) {
	headings := []string{
		"1. Definitions",
		"12.3) Subprocessor Approval",
		"CONFIDENTIALITY",
		"Data Retention Policy:",
		"3/14/2024, 9:05 AM",
		"https://example.com/terms",
		"PRODUCTS",
	}
	for _, h := range headings {
		if !isHeadingLine(h) {
			t.Errorf("Expected %q to be heading-like", h)
		}
	}

	body := []string{
		"",
		"the processor shall maintain records of processing activities",
		"This sentence is long enough and mixed case so it is clearly not a short title line heading",
	}
	for _, b := range body {
		if isHeadingLine(b) {
			t.Errorf("Expected %q not to be heading-like", b)
		}
	}
}

func TestCategorize_FirstMatchWins(t *testing.T) {
	// "subprocessor" contains "processor", and "processor" is checked
	// first in the ordered keyword table.
	if got := categorize("The subprocessor list shall be maintained."); got != "Processor Obligations" {
		t.Errorf("Expected first-match category Processor Obligations, got %q", got)
	}
	if got := categorize("Nothing relevant here."); got != "General" {
		t.Errorf("Expected default category General, got %q", got)
	}
}
