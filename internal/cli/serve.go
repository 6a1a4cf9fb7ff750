package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"clausecheck/internal/api"
	"clausecheck/internal/pipeline"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis pipeline over HTTP",
	Long: `Serve starts an HTTP server exposing the pipeline:

  GET  /health          liveness and active retrieval backend
  POST /analyze         multipart document upload, returns the report
  GET  /reports         list persisted reports, newest first
  GET  /reports/:hash   fetch one report by document hash

Example:
  clausecheck serve
  clausecheck serve --listen :9090 --qdrant http://localhost:6333`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "listen address")
	serveCmd.Flags().StringVar(&qdrantURL, "qdrant", "", "Qdrant base URL (default: flat-file retrieval)")
	serveCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the non-scoring LLM rationale note")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := analysisConfig()

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	p := pipeline.NewPipeline(context.Background(), cfg)
	server := api.NewServer(p)

	fmt.Fprintf(os.Stderr, "Listening on %s (retrieval backend: %s)\n", listenAddr, p.BackendName())
	return server.Run(listenAddr)
}
