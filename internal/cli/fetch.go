package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clausecheck/internal/corpus"
	"clausecheck/internal/worker"
)

var (
	fetchTimeout time.Duration
	fetchDest    string
	sourcesFile  string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Mirror GDPR regulation pages into the local source directory",
	Long: `Fetch downloads regulation pages, strips markup, and writes them as
gdpr_*.txt files the index builder can read. Robots.txt is honored and
requests are rate limited per domain.

By default the GDPR articles referenced by the risk rules are mirrored.
A custom source list can be supplied as "name url" lines in a file.

Example:
  clausecheck fetch
  clausecheck fetch --dest data/regulations/gdpr/source
  clausecheck fetch --sources my-sources.txt`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 5*time.Minute, "total fetch timeout")
	fetchCmd.Flags().StringVar(&fetchDest, "dest", "", "destination directory (default: config source dir)")
	fetchCmd.Flags().StringVar(&sourcesFile, "sources", "", "custom source list file (name url per line)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	cfg := loadConfig()
	dest := cfg.Index.SourceDir
	if fetchDest != "" {
		dest = fetchDest
	}

	sources := corpus.DefaultSources()
	if sourcesFile != "" {
		lines, err := worker.ReadPathsFromFile(sourcesFile)
		if err != nil {
			return fmt.Errorf("read sources: %w", err)
		}
		sources = sources[:0]
		for _, line := range lines {
			var name, url string
			if _, err := fmt.Sscanf(line, "%s %s", &name, &url); err != nil {
				return fmt.Errorf("invalid source line %q (want: name url)", line)
			}
			sources = append(sources, corpus.Source{Name: name, URL: url})
		}
	}

	fetcher := corpus.NewFetcher(cfg.Fetch, cfg.Output.Verbose)
	written, err := fetcher.Mirror(ctx, sources, dest)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	fmt.Printf("Mirrored %d of %d sources into %s\n", written, len(sources), dest)
	fmt.Println("Run 'clausecheck index build' to rebuild the regulatory index.")
	return nil
}
