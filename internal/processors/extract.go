package processors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"hnreport/internal/cache"
	"hnreport/internal/extract"
	"hnreport/internal/types"

	"golang.org/x/net/html/charset"
)

const (
	ReasonSkipped   = "skipped"
	ReasonTimeout   = "timeout"
	ReasonNoContent = "no content could be extracted"

	DefaultUserAgent     = "Mozilla/5.0 (compatible; hnreport/1.0; +https://news.ycombinator.com)"
	DefaultFetchTimeout  = 10 * time.Second
	DefaultContentLength = 4000
	DefaultMaxBodyBytes  = 5 << 20
)

var skippedExtensions = []string{".pdf", ".zip", ".exe", ".dmg", ".iso"}

type FetcherConfig struct {
	Enabled          bool
	Timeout          time.Duration
	UserAgent        string
	MaxContentLength int
	MaxBodyBytes     int64
	DiscussionHost   string
	// CacheTTL keeps successful extractions for repeated URLs within a run.
	// Zero disables the cache.
	CacheTTL time.Duration
}

// ArticleFetcher downloads a story's article and runs it through the
// extraction cascade. Every failure is reported inside the FetchResult.
type ArticleFetcher struct {
	config     FetcherConfig
	httpClient *http.Client
	cascade    *extract.Cascade
	results    *cache.Cache[string, types.FetchResult]
	logger     *slog.Logger
}

func NewArticleFetcher(config FetcherConfig, cascade *extract.Cascade, logger *slog.Logger) *ArticleFetcher {
	if config.Timeout == 0 {
		config.Timeout = DefaultFetchTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.MaxContentLength == 0 {
		config.MaxContentLength = DefaultContentLength
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if config.DiscussionHost == "" {
		config.DiscussionHost = types.DiscussionHost
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cascade == nil {
		cascade = extract.NewCascade(logger)
	}

	f := &ArticleFetcher{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		cascade:    cascade,
		logger:     logger,
	}
	if config.CacheTTL > 0 {
		f.results = cache.NewCache[string, types.FetchResult](cache.CacheConfig{
			TTL:    config.CacheTTL,
			Logger: logger,
		}, func(u string) string { return u })
	}
	return f
}

func (f *ArticleFetcher) Enabled() bool {
	return f.config.Enabled
}

// Reset drops cached results so a new run downloads every article again.
func (f *ArticleFetcher) Reset() {
	if f.results == nil {
		return
	}
	if n := f.results.Len(); n > 0 {
		f.logger.Debug("Article cache cleared", "entries", n)
	}
	f.results.Clear()
}

// Eligible reports whether u points at something worth downloading: not
// empty, not the discussion site itself, not a binary download.
func (f *ArticleFetcher) Eligible(u string) bool {
	if strings.TrimSpace(u) == "" {
		return false
	}

	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	discussion := strings.ToLower(f.config.DiscussionHost)
	if host == discussion || strings.HasSuffix(host, "."+discussion) {
		return false
	}

	ext := strings.ToLower(path.Ext(parsed.Path))
	for _, skipped := range skippedExtensions {
		if ext == skipped {
			return false
		}
	}

	return true
}

func (f *ArticleFetcher) Fetch(ctx context.Context, u string) types.FetchResult {
	if !f.Eligible(u) {
		f.logger.Info("Article fetch skipped", "url", u)
		return types.FetchFailure(ReasonSkipped)
	}

	if f.results != nil {
		if cached, ok := f.results.Get(u); ok {
			f.logger.Debug("Article served from cache", "url", u, "method", cached.Method)
			return cached
		}
	}

	markup, reason := f.download(ctx, u)
	if reason != "" {
		f.logger.Warn("Article fetch failed", "url", u, "reason", reason)
		return types.FetchFailure(reason)
	}

	var base *url.URL
	if parsed, err := url.Parse(u); err == nil {
		base = parsed
	}

	text, method, ok := f.cascade.ExtractFrom(markup, base)
	if !ok {
		f.logger.Warn("Article extraction failed", "url", u)
		return types.FetchFailure(ReasonNoContent)
	}

	text = extract.Truncate(text, f.config.MaxContentLength)
	f.logger.Info("Article extracted", "url", u, "method", method, "length", len([]rune(text)))

	result := types.FetchSuccess(text, method)
	if f.results != nil {
		f.results.Set(u, result)
	}
	return result
}

// download returns the body decoded to UTF-8, or a failure reason.
func (f *ArticleFetcher) download(ctx context.Context, u string) (string, string) {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Sprintf("request failed: %v", err)
	}

	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", ReasonTimeout
		}
		return "", fmt.Sprintf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, f.config.MaxBodyBytes)
	reader, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = body
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		if isTimeout(err) {
			return "", ReasonTimeout
		}
		return "", fmt.Sprintf("request failed: %v", err)
	}

	return string(data), ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
