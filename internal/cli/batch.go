package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clausecheck/internal/pipeline"
	"clausecheck/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchExtensions are the document types picked up from a directory.
var batchExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".html": true,
	".htm":  true,
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest-or-dir>",
	Short: "Analyze multiple documents in parallel",
	Long: `Batch analyzes multiple documents concurrently:
- Read document paths from a manifest file (one per line), or scan a
  directory for supported document types
- Analyze documents in parallel with a configurable worker count
- Persist one report per document, keyed by content hash

Example:
  clausecheck batch contracts.txt
  clausecheck batch ./contracts --concurrency 8
  clausecheck batch contracts.txt --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared analysis flags
	batchCmd.Flags().StringVar(&reportsDir, "reports-dir", "", "report output directory (default from config)")
	batchCmd.Flags().StringVar(&qdrantURL, "qdrant", "", "Qdrant base URL (default: flat-file retrieval)")
	batchCmd.Flags().IntVar(&topK, "top-k", 0, "GDPR chunks retrieved per clause (default from config)")
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the non-scoring LLM rationale note")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := analysisConfig()
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}

	paths, err := batchPaths(input)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documents found in %s", input)
	}

	fmt.Fprintf(os.Stderr, "Analyzing %d documents with %d workers\n", len(paths), cfg.Concurrency.BatchWorkers)

	p := pipeline.NewPipeline(ctx, cfg)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)
	results := processor.ProcessPaths(ctx, paths)

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Path, result.Error)
			continue
		}
		successCount++
		fmt.Printf("%s: risk %d/100, %d clauses, report %s\n",
			result.Path,
			result.Report.ExecutiveSummary.OverallRiskScore,
			result.Report.ExecutiveSummary.TotalClauses,
			result.ReportPath)
	}

	fmt.Fprintf(os.Stderr, "Done: %d succeeded, %d failed\n", successCount, failureCount)
	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d documents failed", failureCount)
	}
	return nil
}

// batchPaths resolves the input argument to document paths: directories
// are scanned for supported extensions, anything else is treated as a
// manifest file.
func batchPaths(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", input, err)
	}

	if !info.IsDir() {
		return worker.ReadPathsFromFile(input)
	}

	var paths []string
	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", input, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if batchExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(input, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
