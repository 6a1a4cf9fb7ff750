// Package api exposes the analysis pipeline over HTTP. Uploads are
// analyzed synchronously; persisted reports are served back by document
// hash.
package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clausecheck/internal/extract"
	"clausecheck/internal/pipeline"
)

// maxUploadBytes bounds the accepted request body.
const maxUploadBytes = 10 << 20

// allowedExtensions are the document types the extractor understands.
var allowedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".html": true,
	".htm":  true,
}

// Server serves the analysis API.
type Server struct {
	pipeline *pipeline.Pipeline
	router   *gin.Engine
}

// NewServer creates the API server around an initialized pipeline.
func NewServer(p *pipeline.Pipeline) *Server {
	s := &Server{pipeline: p}

	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/health", s.handleHealth)
	router.POST("/analyze", s.handleAnalyze)
	router.GET("/reports", s.handleListReports)
	router.GET("/reports/:hash", s.handleGetReport)

	s.router = router
	return s
}

// Router exposes the handler for tests and custom servers.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": s.pipeline.BackendName(),
	})
}

// handleAnalyze accepts a multipart document upload, runs the pipeline,
// and returns the full report.
func (s *Server) handleAnalyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("unsupported file type %q", ext)})
		return
	}

	// Spool to a temp file so the extractor can sniff by extension.
	tmpPath := filepath.Join(os.TempDir(), "clausecheck-"+uuid.New().String()+ext)
	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer func() { _ = os.Remove(tmpPath) }()

	text, err := extract.DocumentText(tmpPath)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := s.pipeline.AnalyzeText(c.Request.Context(), filepath.Base(fileHeader.Filename), text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result.Report)
}

func (s *Server) handleListReports(c *gin.Context) {
	entries, err := s.pipeline.Store().List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"reports": entries,
	})
}

func (s *Server) handleGetReport(c *gin.Context) {
	hash := c.Param("hash")

	var report map[string]any
	if err := s.pipeline.Store().Load(hash, &report); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("report %s not found", hash)})
		return
	}
	c.JSON(http.StatusOK, report)
}
