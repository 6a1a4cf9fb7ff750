package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clausecheck/internal/embed"
	"clausecheck/internal/index"
	"clausecheck/internal/model"
)

// testConfig returns a config rooted in a temp dir with a small flat-file
// index built from one regulation source.
func testConfig(t *testing.T) *model.Config {
	t.Helper()
	root := t.TempDir()

	cfg := model.DefaultConfig()
	cfg.Index.Dir = filepath.Join(root, "index")
	cfg.Index.SourceDir = filepath.Join(root, "source")
	cfg.Reports.Dir = filepath.Join(root, "reports")
	cfg.Embedding.CacheDir = filepath.Join(root, "cache")
	cfg.Embedding.APIKey = ""
	cfg.Index.QdrantURL = ""

	if err := os.MkdirAll(cfg.Index.SourceDir, 0755); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	article := "A personal data breach shall be notified to the supervisory authority " +
		"without undue delay and, where feasible, not later than 72 hours after " +
		"having become aware of it. The notification shall describe the nature " +
		"of the breach including the categories and approximate number of data " +
		"subjects concerned and the likely consequences of the breach."
	if err := os.WriteFile(filepath.Join(cfg.Index.SourceDir, "gdpr_article_33.txt"), []byte(article), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	builder := index.NewBuilder(cfg.Index, embed.NewHashEmbedder(cfg.Embedding.Dimension), nil, false)
	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Expected no error building index, got %v", err)
	}
	return cfg
}

func TestPipeline_AnalyzeFileEndToEnd(t *testing.T) {
	cfg := testConfig(t)

	contract := `1. Data Breach Notification

In the event of a personal data breach affecting customer records, the
processor will inform the controller at a time of its own choosing and may
share details with any third party it considers relevant.

2. Security Measures

The vendor will maintain security appropriate to its own operational needs
and apply commercially reasonable efforts to protect customer data assets.`

	path := filepath.Join(t.TempDir(), "contract.txt")
	if err := os.WriteFile(path, []byte(contract), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx := context.Background()
	p := NewPipeline(ctx, cfg)

	if p.BackendName() != "flatfile" {
		t.Errorf("Expected flatfile backend without Qdrant, got %s", p.BackendName())
	}

	result, err := p.AnalyzeFile(ctx, path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rep := result.Report
	if len(rep.Clauses) != 2 {
		t.Fatalf("Expected 2 clauses, got %d", len(rep.Clauses))
	}
	if rep.Clauses[0].ClauseID != "C001" || rep.Clauses[1].ClauseID != "C002" {
		t.Errorf("Expected sequential clause ids, got %s %s", rep.Clauses[0].ClauseID, rep.Clauses[1].ClauseID)
	}
	if rep.SourceFile != path {
		t.Errorf("Expected source file %s, got %s", path, rep.SourceFile)
	}
	if len(rep.DocumentHash) != 16 {
		t.Errorf("Expected 16-char document hash, got %q", rep.DocumentHash)
	}

	if len(rep.GDPRMatches) == 0 {
		t.Error("Expected at least one GDPR match from the flat index")
	}
	for _, m := range rep.GDPRMatches {
		if m.Article != "Article 33" {
			t.Errorf("Expected matches against Article 33, got %s", m.Article)
		}
	}

	if len(rep.RiskScores) != 2 {
		t.Fatalf("Expected one risk result per clause, got %d", len(rep.RiskScores))
	}
	// The breach clause omits the 72-hour window and shares broadly.
	if rep.RiskScores[0].RiskScore < 40 {
		t.Errorf("Expected high-risk breach clause to warrant a fix, got score %d", rep.RiskScores[0].RiskScore)
	}
	if len(rep.SuggestedFixes) == 0 {
		t.Error("Expected suggested fixes for at-risk clauses")
	}

	// Report was persisted under the document hash.
	if _, err := os.Stat(result.ReportPath); err != nil {
		t.Errorf("Expected persisted report at %s, got %v", result.ReportPath, err)
	}
	if !strings.HasSuffix(result.ReportPath, rep.DocumentHash+".json") {
		t.Errorf("Expected report named by document hash, got %s", result.ReportPath)
	}
}

func TestPipeline_AnalyzeFileDeterministicHash(t *testing.T) {
	cfg := testConfig(t)

	content := "3. Retention\n\nPersonal data will be retained as needed for business purposes and deleted when convenient for the vendor organization."
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx := context.Background()
	p := NewPipeline(ctx, cfg)

	first, err := p.AnalyzeFile(ctx, path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := p.AnalyzeFile(ctx, path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if first.Report.DocumentHash != second.Report.DocumentHash {
		t.Errorf("Expected identical hashes for identical content, got %s and %s",
			first.Report.DocumentHash, second.Report.DocumentHash)
	}
	if first.ReportPath != second.ReportPath {
		t.Errorf("Expected re-analysis to overwrite in place, got %s and %s",
			first.ReportPath, second.ReportPath)
	}

	entries, err := p.Store().List()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected a single stored report, got %d", len(entries))
	}
}

func TestPipeline_AnalyzeMissingFile(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	p := NewPipeline(ctx, cfg)

	if _, err := p.AnalyzeFile(ctx, filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Expected error for missing input file")
	}
}

func TestPipeline_AnalyzeTextSourceName(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	p := NewPipeline(ctx, cfg)

	result, err := p.AnalyzeText(ctx, "upload.txt",
		"Breach handling follows internal procedures and best effort notification to affected parties where practical.")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Report.SourceFile != "upload.txt" {
		t.Errorf("Expected source name upload.txt, got %s", result.Report.SourceFile)
	}
}
