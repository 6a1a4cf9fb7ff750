package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry describes one persisted report without loading its payload.
type Entry struct {
	DocumentHash string    `json:"document_hash"`
	Path         string    `json:"path"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// Store persists assembled reports as pretty-printed JSON files named by
// document hash, so re-analyzing unchanged input overwrites in place.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory reports are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the report and returns the path it was written to.
func (s *Store) Save(report any, documentHash string) (string, error) {
	if documentHash == "" {
		return "", fmt.Errorf("document hash is empty")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	path := s.pathFor(documentHash)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Load reads a persisted report by document hash into out.
func (s *Store) Load(documentHash string, out any) error {
	data, err := os.ReadFile(s.pathFor(documentHash))
	if err != nil {
		return fmt.Errorf("reading report %s: %w", documentHash, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding report %s: %w", documentHash, err)
	}
	return nil
}

// List returns the persisted reports, newest first.
func (s *Store) List() ([]Entry, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	entries := make([]Entry, 0, len(files))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			DocumentHash: strings.TrimSuffix(filepath.Base(file), ".json"),
			Path:         file,
			ModifiedAt:   info.ModTime(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModifiedAt.After(entries[j].ModifiedAt)
	})
	return entries, nil
}

func (s *Store) pathFor(documentHash string) string {
	return filepath.Join(s.dir, documentHash+".json")
}
