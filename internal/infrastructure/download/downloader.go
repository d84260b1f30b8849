// Package download fetches feeds and articles with per-host politeness,
// bounded retries and block detection. Transport failures never escape as
// errors from Fetch; they are captured in the Result for the caller.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

const maxBodyBytes = 10 << 20

var _ ports.ResourceFetcher = (*Manager)(nil)

// Manager performs scheme-aware fetches. Safe for concurrent use.
type Manager struct {
	client *http.Client
	cfg    config.DownloaderConfig
	logger *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewManager wires an HTTP client honoring the configured timeout.
func NewManager(cfg config.DownloaderConfig, client *http.Client, logger *slog.Logger) *Manager {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	return &Manager{
		client:   client,
		cfg:      cfg,
		logger:   logger,
		limiters: map[string]*rate.Limiter{},
	}
}

// Fetch retrieves the resource behind rawURL. Local-file URIs (file scheme
// or bare paths) read from disk; network URIs go through HTTP with retries
// and the politeness window.
func (m *Manager) Fetch(ctx context.Context, rawURL string) domain.DownloadResult {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return domain.DownloadResult{URL: rawURL, Err: fmt.Sprintf("invalid url: %v", err)}
	}

	switch parsed.Scheme {
	case "http", "https":
		return m.fetchHTTP(ctx, rawURL, parsed.Hostname())
	case "file":
		return m.fetchFile(rawURL, localPath(parsed))
	case "":
		return m.fetchFile(rawURL, rawURL)
	default:
		return domain.DownloadResult{URL: rawURL, Err: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}
}

func (m *Manager) fetchFile(rawURL, path string) domain.DownloadResult {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DownloadResult{URL: rawURL, Err: fmt.Sprintf("read local feed: %v", err), Elapsed: time.Since(start)}
	}

	return domain.DownloadResult{
		URL:        rawURL,
		Body:       string(data),
		StatusCode: http.StatusOK,
		FinalURL:   rawURL,
		Elapsed:    time.Since(start),
	}
}

func (m *Manager) fetchHTTP(ctx context.Context, rawURL, host string) domain.DownloadResult {
	start := time.Now()

	var resp *http.Response
	operation := func() error {
		// Every attempt reserves the per-host window, retries included.
		if err := m.waitPoliteness(ctx, host); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", m.cfg.UserAgent)
		req.Header.Set("Accept", "text/html,application/rss+xml,application/xml;q=0.9,*/*;q=0.8")

		// Client.Do errors are transport-level (timeout, reset, TLS)
		// and therefore retryable; HTTP statuses never error here.
		resp, err = m.client.Do(req)
		if err != nil {
			m.debug("transport failure, will retry", "url", rawURL, "error", err)
			return err
		}
		return nil
	}

	policy := backoff.WithContext(m.retryPolicy(), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return domain.DownloadResult{URL: rawURL, Err: err.Error(), Elapsed: time.Since(start)}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)

	result := domain.DownloadResult{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		Elapsed:    elapsed,
	}

	if blocked(resp.StatusCode) {
		// The body of a block page is never usable content.
		result.Blocked = true
		result.Err = fmt.Sprintf("HTTP %d (blocked)", resp.StatusCode)
		return result
	}

	if readErr != nil {
		result.Err = fmt.Sprintf("read body: %v", readErr)
		return result
	}

	if resp.StatusCode >= 400 {
		// Terminal for the caller to interpret; not retried.
		result.Err = fmt.Sprintf("HTTP %d", resp.StatusCode)
		result.Body = string(body)
		return result
	}

	result.Body = string(body)
	return result
}

// waitPoliteness blocks until the per-host minimum delay has elapsed.
func (m *Manager) waitPoliteness(ctx context.Context, host string) error {
	if m.cfg.HostDelay <= 0 || host == "" {
		return nil
	}

	m.mu.Lock()
	limiter, ok := m.limiters[host]
	if !ok {
		interval := time.Duration(m.cfg.HostDelay * float64(time.Second))
		limiter = rate.NewLimiter(rate.Every(interval), 1)
		m.limiters[host] = limiter
	}
	m.mu.Unlock()

	return limiter.Wait(ctx)
}

func (m *Manager) retryPolicy() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Duration(m.cfg.BackoffSeconds * float64(time.Second))
	policy.MaxInterval = time.Duration(m.cfg.BackoffCap * float64(time.Second))
	policy.MaxElapsedTime = 0

	attempts := m.cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return backoff.WithMaxRetries(policy, uint64(attempts-1))
}

// blocked flags status codes that indicate a bot wall rather than content.
// No text heuristics here; legitimate articles mention captchas and robots.
func blocked(status int) bool {
	return status == http.StatusForbidden || status == http.StatusTooManyRequests
}

func localPath(u *url.URL) string {
	path := u.Path
	if u.Host != "" {
		// file://relative/path parses the first segment as host.
		path = u.Host + path
	}
	if strings.HasPrefix(path, "//") {
		path = strings.TrimPrefix(path, "/")
	}
	return path
}

func (m *Manager) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
