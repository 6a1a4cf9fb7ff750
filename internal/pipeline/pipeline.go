// Package pipeline wires the analysis stages together: document text
// extraction, clause segmentation, GDPR retrieval, risk scoring, fix
// suggestion, and report assembly. Stage order is fixed; only input
// errors abort a run, degraded backends fall back silently.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"clausecheck/internal/embed"
	"clausecheck/internal/extract"
	"clausecheck/internal/fix"
	"clausecheck/internal/llm"
	"clausecheck/internal/model"
	"clausecheck/internal/report"
	"clausecheck/internal/retrieval"
	"clausecheck/internal/score"
	"clausecheck/internal/util"
	"clausecheck/internal/vectorstore"
)

// qdrantTimeout bounds every request to the vector backend.
const qdrantTimeout = 10 * time.Second

// Pipeline orchestrates one complete contract analysis.
type Pipeline struct {
	segmenter *extract.Segmenter
	engine    *retrieval.Engine
	scorer    *score.Scorer
	suggester *fix.Suggester
	assembler *report.Assembler
	store     *report.Store
	config    *model.Config
}

// NewPipeline creates a pipeline from the configuration. The vector
// backend is probed once here; when Qdrant is not configured or not
// reachable, retrieval runs against the flat-file index instead.
func NewPipeline(ctx context.Context, cfg *model.Config) *Pipeline {
	verbose := cfg.Output.Verbose
	provider := embed.NewProvider(cfg.Embedding, verbose)

	var qdrant *vectorstore.QdrantStore
	if cfg.Index.QdrantURL != "" {
		qdrant = vectorstore.NewQdrantStore(cfg.Index.QdrantURL, cfg.Index.Collection, qdrantTimeout)
	}

	var rationalizer *llm.Rationalizer
	if cfg.LLM.Enabled {
		rationalizer = llm.NewRationalizer(cfg.LLM)
		if rationalizer == nil && verbose {
			fmt.Fprintf(os.Stderr, "Warning: LLM rationale enabled but no API key configured, skipping\n")
		}
	}

	return &Pipeline{
		segmenter: extract.NewSegmenter(extract.DefaultMinChars),
		engine:    retrieval.NewEngine(ctx, *cfg, provider, qdrant, verbose),
		scorer:    score.NewScorer(rationalizer),
		suggester: fix.NewSuggester(),
		assembler: report.NewAssembler(),
		store:     report.NewStore(cfg.Reports.Dir),
		config:    cfg,
	}
}

// Store exposes the report store so callers can list and load past runs.
func (p *Pipeline) Store() *report.Store {
	return p.store
}

// BackendName reports which retrieval backend this pipeline resolved to.
func (p *Pipeline) BackendName() string {
	return p.engine.BackendName()
}

// AnalysisResult is the outcome of one document run.
type AnalysisResult struct {
	Report     *model.PipelineReport
	ReportPath string
}

// AnalyzeFile runs the full pipeline over one document and persists the
// report keyed by the document's content hash.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*AnalysisResult, error) {
	text, err := extract.DocumentText(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return p.analyze(ctx, path, text)
}

// AnalyzeText runs the pipeline over already-extracted text, labeled with
// sourceName in the report. Used by the HTTP API for uploaded content.
func (p *Pipeline) AnalyzeText(ctx context.Context, sourceName, text string) (*AnalysisResult, error) {
	return p.analyze(ctx, sourceName, text)
}

func (p *Pipeline) analyze(ctx context.Context, sourceName, text string) (*AnalysisResult, error) {
	documentHash := util.DocumentHash(text)

	clauses, err := p.segmenter.ExtractClauses(text)
	if err != nil {
		return nil, fmt.Errorf("segment clauses: %w", err)
	}

	matches, err := p.engine.MatchClauses(ctx, clauses)
	if err != nil {
		return nil, fmt.Errorf("match clauses: %w", err)
	}

	results := p.scorer.Score(ctx, clauses, matches)
	fixes := p.suggester.Suggest(clauses, matches, results)

	rep, err := p.assembler.Assemble(sourceName, documentHash, clauses, matches, results, fixes)
	if err != nil {
		return nil, fmt.Errorf("assemble report: %w", err)
	}

	path, err := p.store.Save(rep, documentHash)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzed %s: %d clauses, overall risk %d, report %s\n",
			sourceName, len(clauses), rep.ExecutiveSummary.OverallRiskScore, path)
	}

	return &AnalysisResult{Report: rep, ReportPath: path}, nil
}
