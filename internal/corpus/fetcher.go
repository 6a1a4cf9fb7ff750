// Package corpus downloads regulation pages into the local source
// directory the index builder reads from. Fetching is polite: robots.txt
// is honored, requests are rate limited per domain, and transient
// failures are retried with backoff.
package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"clausecheck/internal/extract"
	"clausecheck/internal/model"
	"clausecheck/internal/util"
	"clausecheck/internal/worker"
)

// maxFetchAttempts bounds retries for one URL.
const maxFetchAttempts = 3

// fetchSleepFunc is replaceable in tests to skip backoff delays.
var fetchSleepFunc = time.Sleep

// Source is one regulation page to mirror. Name becomes the stem of the
// stored file, so "article_33" is written as gdpr_article_33.txt and
// surfaces as "Article 33" in retrieval results.
type Source struct {
	Name string
	URL  string
}

// DefaultSources lists the GDPR articles the risk rules reference.
func DefaultSources() []Source {
	return []Source{
		{Name: "article_5", URL: "https://gdpr-info.eu/art-5-gdpr/"},
		{Name: "article_6", URL: "https://gdpr-info.eu/art-6-gdpr/"},
		{Name: "article_28", URL: "https://gdpr-info.eu/art-28-gdpr/"},
		{Name: "article_32", URL: "https://gdpr-info.eu/art-32-gdpr/"},
		{Name: "article_33", URL: "https://gdpr-info.eu/art-33-gdpr/"},
	}
}

// Fetcher mirrors regulation pages to local text files.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	verbose    bool
}

// NewFetcher creates a fetcher from the fetch configuration.
func NewFetcher(cfg model.FetchConfig, verbose bool) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		limiter:   worker.NewLimiter(cfg.RequestsPerSecond, 1),
		verbose:   verbose,
	}
}

// Mirror downloads each source, converts it to plain text, and writes it
// under destDir. Failures and robots-disallowed pages are skipped with a
// warning; the call errors only when nothing could be mirrored.
func (f *Fetcher) Mirror(ctx context.Context, sources []Source, destDir string) (int, error) {
	if len(sources) == 0 {
		return 0, fmt.Errorf("no sources to mirror")
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return 0, fmt.Errorf("create source directory: %w", err)
	}

	written := 0
	var lastErr error
	for _, src := range sources {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, src.URL)
		if err != nil {
			lastErr = err
			f.warnf("robots check failed for %s: %v", src.URL, err)
			continue
		}
		if !allowed {
			f.warnf("robots.txt disallows %s, skipping", src.URL)
			continue
		}

		if err := f.limiter.WaitWithDelay(ctx, src.URL, crawlDelay); err != nil {
			return written, err
		}

		html, err := f.FetchWithRetry(ctx, src.URL)
		if err != nil {
			lastErr = err
			f.warnf("fetch %s failed: %v", src.URL, err)
			continue
		}

		text, err := extract.HTMLText(html)
		if err != nil {
			lastErr = err
			f.warnf("extract text from %s failed: %v", src.URL, err)
			continue
		}
		text = extract.NormalizeText(text)
		if text == "" {
			f.warnf("no text content at %s, skipping", src.URL)
			continue
		}

		path := filepath.Join(destDir, "gdpr_"+src.Name+".txt")
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written++
		if f.verbose {
			fmt.Fprintf(os.Stderr, "Mirrored %s -> %s (%d bytes)\n", src.URL, path, len(text))
		}
	}

	if written == 0 {
		if lastErr != nil {
			return 0, fmt.Errorf("no sources mirrored: %w", lastErr)
		}
		return 0, fmt.Errorf("no sources mirrored")
	}
	return written, nil
}

// FetchWithRetry fetches a URL, retrying transient failures with a short
// exponential backoff.
func (f *Fetcher) FetchWithRetry(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		body, err := f.fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return "", err
		}
		if attempt < maxFetchAttempts {
			fetchSleepFunc(time.Duration(attempt) * 500 * time.Millisecond)
		}
	}
	return "", lastErr
}

func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// isRetryableFetchError reports whether a fetch error is worth retrying:
// 429 and 5xx statuses, plus connection-level failures.
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if rest, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return false
		}
		code, convErr := strconv.Atoi(fields[0])
		if convErr != nil {
			return false
		}
		return code == http.StatusTooManyRequests || code >= 500
	}

	if strings.HasPrefix(msg, "fetch: ") {
		return strings.Contains(msg, "connection refused") ||
			strings.Contains(msg, "connection reset") ||
			strings.Contains(msg, "timeout") ||
			strings.Contains(msg, "EOF")
	}

	return false
}

func (f *Fetcher) warnf(format string, args ...any) {
	if f.verbose {
		fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
}
