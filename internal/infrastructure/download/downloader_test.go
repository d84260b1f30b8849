package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"NewsScanner/internal/config"
)

func testConfig() config.DownloaderConfig {
	return config.DownloaderConfig{
		TimeoutSeconds: 2,
		MaxAttempts:    3,
		BackoffSeconds: 0.01,
		BackoffCap:     0.05,
		HostDelay:      0,
		UserAgent:      "NewsScanner-test/1.0",
	}
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "NewsScanner-test/1.0" {
			t.Errorf("unexpected user agent: %s", ua)
		}
		w.Write([]byte("<html>body</html>"))
	}))
	defer srv.Close()

	m := NewManager(testConfig(), srv.Client(), nil)
	res := m.Fetch(context.Background(), srv.URL)

	if !res.OK() {
		t.Fatalf("expected ok result, got %+v", res)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", res.StatusCode)
	}
	if res.Body != "<html>body</html>" {
		t.Fatalf("unexpected body: %q", res.Body)
	}
	if res.Elapsed <= 0 {
		t.Fatalf("elapsed time not recorded")
	}
}

func TestFetchHTTPErrorIsTerminalNotRetried(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	m := NewManager(testConfig(), srv.Client(), nil)
	res := m.Fetch(context.Background(), srv.URL)

	if res.OK() {
		t.Fatalf("404 must not be ok")
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", res.StatusCode)
	}
	if res.Blocked {
		t.Fatalf("404 is not a block")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("HTTP errors must not be retried, server hit %d times", got)
	}
}

func TestFetchDetectsBlocking(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte("<html>access denied</html>"))
		}))

		m := NewManager(testConfig(), srv.Client(), nil)
		res := m.Fetch(context.Background(), srv.URL)
		srv.Close()

		if !res.Blocked {
			t.Fatalf("status %d should flag blocked", status)
		}
		if res.Body != "" {
			t.Fatalf("block page body must be discarded, got %q", res.Body)
		}
	}
}

func TestFetchRetriesTransportFailures(t *testing.T) {
	t.Parallel()

	// A server that is already closed yields connection-refused on every
	// attempt; the manager should exhaust its retries and report the error
	// in the result instead of panicking or returning one.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	m := NewManager(testConfig(), nil, nil)
	res := m.Fetch(context.Background(), url)

	if res.Err == "" {
		t.Fatalf("expected transport error in result")
	}
	if res.OK() {
		t.Fatalf("failed fetch must not be ok")
	}
}

func TestFetchLocalFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "feed.xml")
	if err := os.WriteFile(path, []byte("<rss/>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m := NewManager(testConfig(), nil, nil)

	res := m.Fetch(context.Background(), "file://"+path)
	if !res.OK() || res.Body != "<rss/>" {
		t.Fatalf("file scheme fetch failed: %+v", res)
	}

	res = m.Fetch(context.Background(), path)
	if !res.OK() || res.Body != "<rss/>" {
		t.Fatalf("bare path fetch failed: %+v", res)
	}
}

func TestPolitenessWindowDelaysSameHost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HostDelay = 0.15

	m := NewManager(cfg, srv.Client(), nil)

	start := time.Now()
	m.Fetch(context.Background(), srv.URL)
	m.Fetch(context.Background(), srv.URL)
	elapsed := time.Since(start)

	if elapsed < 140*time.Millisecond {
		t.Fatalf("second request to same host should wait the politeness window, elapsed %v", elapsed)
	}
}

func TestPolitenessWindowAppliesToRetries(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		times []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		first := len(times) == 1
		mu.Unlock()

		if first {
			// Drop the connection mid-request so the client sees a
			// retryable transport failure.
			conn, _, err := w.(http.Hijacker).Hijack()
			if err != nil {
				t.Errorf("hijack: %v", err)
				return
			}
			conn.Close()
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HostDelay = 0.25

	m := NewManager(cfg, srv.Client(), nil)

	res := m.Fetch(context.Background(), srv.URL)
	if !res.OK() {
		t.Fatalf("expected the retry to succeed, got %+v", res)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(times) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(times))
	}
	if gap := times[1].Sub(times[0]); gap < 200*time.Millisecond {
		t.Fatalf("retry hit the host %v after the first attempt, inside the politeness window", gap)
	}
}

func TestFetchRejectsUnknownScheme(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), nil, nil)
	res := m.Fetch(context.Background(), "ftp://example.org/feed.xml")
	if res.Err == "" {
		t.Fatalf("expected error for unsupported scheme")
	}
}
