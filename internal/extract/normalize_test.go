package extract

import (
	"strings"
	"testing"
)

func TestNormalizeText_EmptyInput(t *testing.T) {
	if got := NormalizeText(""); got != "" {
		t.Errorf("Expected empty output for empty input, got %q", got)
	}
}

func TestNormalizeText_LineEndingsAndWhitespace(t *testing.T) {
	input := "Data\tProcessing\r\nAgreement\rbetween   the  parties"
	got := NormalizeText(input)

	if strings.Contains(got, "\r") {
		t.Error("Expected all carriage returns to be normalized")
	}
	if strings.Contains(got, "\t") {
		t.Error("Expected tabs to be collapsed")
	}
	if strings.Contains(got, "  ") {
		t.Errorf("Expected runs of spaces to collapse, got %q", got)
	}
}

func TestNormalizeText_CollapsesBlankLines(t *testing.T) {
	input := "First paragraph.\n\n\n\n\nSecond paragraph."
	got := NormalizeText(input)

	if strings.Contains(got, "\n\n\n") {
		t.Errorf("Expected 3+ blank lines collapsed to one blank line, got %q", got)
	}
	if !strings.Contains(got, "\n\n") {
		t.Errorf("Expected a single blank line to remain, got %q", got)
	}
}

func TestNormalizeText_DropsNoiseLines(t *testing.T) {
	input := strings.Join([]string{
		"3/14/2024, 9:05 AM",
		"The processor shall notify the controller of any breach.",
		"https://example.com/export/page",
		"12/34",
		"TRY GROK",
		"Web",
		"Retention periods are defined in Annex 2.",
	}, "\n")

	got := NormalizeText(input)

	for _, noise := range []string{"3/14/2024", "https://example.com", "12/34", "TRY GROK", "Web"} {
		if strings.Contains(got, noise) {
			t.Errorf("Expected noise line %q to be dropped", noise)
		}
	}
	if !strings.Contains(got, "notify the controller") {
		t.Error("Expected content lines to survive")
	}
	if !strings.Contains(got, "Annex 2") {
		t.Error("Expected content lines to survive")
	}
}

func TestNormalizeText_NonBreakingSpace(t *testing.T) {
	got := NormalizeText("Article 32 applies.")
	if got != "Article 32 applies." {
		t.Errorf("Expected NBSP replaced with space, got %q", got)
	}
}
