package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"clausecheck/internal/embed"
	"clausecheck/internal/index"
	"clausecheck/internal/vectorstore"
)

var (
	indexTimeout time.Duration
	sourceDir    string
	indexDir     string
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the regulatory index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the regulatory index from local source files",
	Long: `Build reads gdpr_*.txt files from the source directory, chunks them
with overlap, embeds every chunk, and stores the result.

When a Qdrant URL is configured the chunks are upserted into the
collection; otherwise (or when Qdrant is unreachable) a flat-file index
is written next to the chunk file and retrieval falls back to it.

Example:
  clausecheck index build
  clausecheck index build --source-dir data/regulations/gdpr/source
  clausecheck index build --qdrant http://localhost:6333`,
	RunE: runIndexBuild,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexBuildCmd)

	indexBuildCmd.Flags().DurationVar(&indexTimeout, "timeout", 5*time.Minute, "index build timeout")
	indexBuildCmd.Flags().StringVar(&sourceDir, "source-dir", "", "regulation source directory (default from config)")
	indexBuildCmd.Flags().StringVar(&indexDir, "index-dir", "", "index output directory (default from config)")
	indexBuildCmd.Flags().StringVar(&qdrantURL, "qdrant", "", "Qdrant base URL (default: flat-file index only)")
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	cfg := loadConfig()
	if sourceDir != "" {
		cfg.Index.SourceDir = sourceDir
	}
	if indexDir != "" {
		cfg.Index.Dir = indexDir
	}
	if qdrantURL != "" {
		cfg.Index.QdrantURL = qdrantURL
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Source dir: %s\n", cfg.Index.SourceDir)
		fmt.Fprintf(os.Stderr, "Index dir:  %s\n", cfg.Index.Dir)
	}

	provider := embed.NewProvider(cfg.Embedding, cfg.Output.Verbose)

	var store *vectorstore.QdrantStore
	if cfg.Index.QdrantURL != "" {
		store = vectorstore.NewQdrantStore(cfg.Index.QdrantURL, cfg.Index.Collection, 30*time.Second)
	}

	builder := index.NewBuilder(cfg.Index, provider, store, cfg.Output.Verbose)
	count, err := builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	fmt.Printf("Indexed %d chunks\n", count)
	fmt.Printf("Chunks:   %s\n", filepath.Join(cfg.Index.Dir, index.ChunksFile))
	if cfg.Index.QdrantURL == "" {
		fmt.Printf("Fallback: %s\n", filepath.Join(cfg.Index.Dir, index.FallbackIndexFile))
	}
	return nil
}
