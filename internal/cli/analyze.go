package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"clausecheck/internal/model"
	"clausecheck/internal/pipeline"
)

var (
	analyzeTimeout time.Duration
	reportsDir     string
	qdrantURL      string
	topK           int
	llmEnabled     bool
	llmModel       string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze one contract document for GDPR risk",
	Long: `Analyze runs the full pipeline over a single document:
- Extract and normalize text (.txt, .md, .pdf, .html)
- Segment the document into clauses
- Retrieve the most relevant GDPR provisions per clause
- Score each clause with the deterministic rule set
- Suggest grounded rewrites for clauses at or above the risk threshold
- Persist the report under its content hash

Example:
  clausecheck analyze contracts/dpa.pdf
  clausecheck analyze contracts/dpa.txt --qdrant http://localhost:6333
  clausecheck analyze contracts/dpa.txt --llm --llm-model gpt-4.1-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&reportsDir, "reports-dir", "", "report output directory (default from config)")
	analyzeCmd.Flags().StringVar(&qdrantURL, "qdrant", "", "Qdrant base URL (default: flat-file retrieval)")
	analyzeCmd.Flags().IntVar(&topK, "top-k", 0, "GDPR chunks retrieved per clause (default from config)")
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the non-scoring LLM rationale note")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg := analysisConfig()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", file)
		fmt.Fprintf(os.Stderr, "Index dir: %s\n", cfg.Index.Dir)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(ctx, cfg)

	if verbose {
		fmt.Fprintf(os.Stderr, "Retrieval backend: %s\n", p.BackendName())
	}

	result, err := p.AnalyzeFile(ctx, file)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	printReportSummary(result.Report, result.ReportPath)
	return nil
}

// analysisConfig layers the analyze/batch flags over the loaded config.
func analysisConfig() *model.Config {
	cfg := loadConfig()
	if reportsDir != "" {
		cfg.Reports.Dir = reportsDir
	}
	if qdrantURL != "" {
		cfg.Index.QdrantURL = qdrantURL
	}
	if topK > 0 {
		cfg.Retrieval.TopK = topK
	}
	if llmEnabled {
		cfg.LLM.Enabled = true
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	return cfg
}

// printReportSummary writes the human-readable result to stdout.
func printReportSummary(report *model.PipelineReport, path string) {
	s := report.ExecutiveSummary

	fmt.Printf("Document:   %s\n", report.SourceFile)
	fmt.Printf("Hash:       %s\n", report.DocumentHash)
	fmt.Printf("Clauses:    %d (%d high risk)\n", s.TotalClauses, s.HighRiskClauses)
	fmt.Printf("Risk score: %d/100\n", s.OverallRiskScore)
	fmt.Println()

	if len(s.KeyFindings) > 0 {
		fmt.Println("Key findings:")
		for _, finding := range s.KeyFindings {
			fmt.Printf("  - %s\n", finding)
		}
		fmt.Println()
	}

	if len(report.SuggestedFixes) > 0 {
		fmt.Printf("Suggested fixes: %d clause(s)\n", len(report.SuggestedFixes))
		for _, fix := range report.SuggestedFixes {
			fmt.Printf("  - %s: %v\n", fix.ClauseID, fix.ReferencedArticles)
		}
		fmt.Println()
	}

	fmt.Printf("Report: %s\n", path)
}
