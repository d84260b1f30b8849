package usecase

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ledger"
)

type fakeFetcher struct {
	results map[string]domain.DownloadResult
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) domain.DownloadResult {
	if res, ok := f.results[url]; ok {
		return res
	}
	return domain.DownloadResult{URL: url, Err: "no fixture"}
}

type fakeExtractor struct {
	fn func(html, pageURL, description string) domain.ExtractionResult
}

func (f *fakeExtractor) Extract(html, pageURL, description string) domain.ExtractionResult {
	return f.fn(html, pageURL, description)
}

func newExtractStore(t *testing.T, recs ...domain.Record) *ledger.Ledger {
	t.Helper()
	store := ledger.Open(filepath.Join(t.TempDir(), "ledger.csv"), nil)
	for _, rec := range recs {
		if !store.Add(rec) {
			t.Fatalf("add %s failed", rec.URL)
		}
	}
	return store
}

func TestExtractMovesRecordToExtracted(t *testing.T) {
	t.Parallel()

	store := newExtractStore(t, domain.Record{
		URL: "https://news.example/a", Language: "en", State: domain.StateNew,
	})

	e := NewExtract(ExtractDeps{
		Ledger: store,
		Fetcher: &fakeFetcher{results: map[string]domain.DownloadResult{
			"https://news.example/a": {URL: "https://news.example/a", StatusCode: 200, Body: "<html>body</html>"},
		}},
		Extractor: &fakeExtractor{fn: func(html, _, _ string) domain.ExtractionResult {
			if html == "" {
				t.Error("extractor should receive the downloaded body")
			}
			return domain.ExtractionResult{Text: "the extracted text", Language: "es", Method: "selectors", Status: domain.ExtractionOK}
		}},
	})

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Extracted != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.Methods["selectors"] != 1 {
		t.Fatalf("method counts = %v", report.Methods)
	}

	rec, _ := store.Get("https://news.example/a")
	if rec.State != domain.StateExtracted || rec.FullText != "the extracted text" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Language != "es" {
		t.Fatalf("language = %q, want detected es", rec.Language)
	}
}

func TestExtractBlockedDownloadMarksError(t *testing.T) {
	t.Parallel()

	store := newExtractStore(t, domain.Record{URL: "https://news.example/b", State: domain.StateNew})

	e := NewExtract(ExtractDeps{
		Ledger: store,
		Fetcher: &fakeFetcher{results: map[string]domain.DownloadResult{
			"https://news.example/b": {URL: "https://news.example/b", StatusCode: 403, Blocked: true},
		}},
		Extractor: &fakeExtractor{fn: func(_, _, _ string) domain.ExtractionResult {
			return domain.ExtractionResult{Method: "none", Status: domain.ExtractionInsufficient}
		}},
	})

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Blocked != 1 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}

	rec, _ := store.Get("https://news.example/b")
	if rec.State != domain.StateError || !strings.Contains(rec.ErrorMessage, "blocked") {
		t.Fatalf("record = %+v", rec)
	}
}

func TestExtractDescriptionRescuesFailedDownload(t *testing.T) {
	t.Parallel()

	store := newExtractStore(t, domain.Record{
		URL:         "https://news.example/c",
		Description: "a sufficiently informative feed description",
		State:       domain.StateNew,
	})

	e := NewExtract(ExtractDeps{
		Ledger:  store,
		Fetcher: &fakeFetcher{results: map[string]domain.DownloadResult{}},
		Extractor: &fakeExtractor{fn: func(html, _, description string) domain.ExtractionResult {
			if html != "" {
				t.Error("failed download must not hand a body to the extractor")
			}
			return domain.ExtractionResult{Text: description, Method: "description", Status: domain.ExtractionOK}
		}},
	})

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Extracted != 1 {
		t.Fatalf("report = %+v", report)
	}

	rec, _ := store.Get("https://news.example/c")
	if rec.State != domain.StateExtracted {
		t.Fatalf("state = %s", rec.State)
	}
}

func TestExtractInsufficientTextMarksError(t *testing.T) {
	t.Parallel()

	store := newExtractStore(t, domain.Record{URL: "https://news.example/d", State: domain.StateNew})

	e := NewExtract(ExtractDeps{
		Ledger: store,
		Fetcher: &fakeFetcher{results: map[string]domain.DownloadResult{
			"https://news.example/d": {URL: "https://news.example/d", StatusCode: 200, Body: "<html>tiny</html>"},
		}},
		Extractor: &fakeExtractor{fn: func(_, _, _ string) domain.ExtractionResult {
			return domain.ExtractionResult{Text: "tiny", Method: "generic", Status: domain.ExtractionInsufficient}
		}},
	})

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}

	rec, _ := store.Get("https://news.example/d")
	if rec.State != domain.StateError || !strings.Contains(rec.ErrorMessage, "too short") {
		t.Fatalf("record = %+v", rec)
	}
}

func TestExtractSkipsRecordsInOtherStates(t *testing.T) {
	t.Parallel()

	store := newExtractStore(t,
		domain.Record{URL: "https://news.example/done", State: domain.StateClassified},
		domain.Record{URL: "https://news.example/err", State: domain.StateError},
	)

	e := NewExtract(ExtractDeps{
		Ledger:  store,
		Fetcher: &fakeFetcher{},
		Extractor: &fakeExtractor{fn: func(_, _, _ string) domain.ExtractionResult {
			t.Error("no record should be processed")
			return domain.ExtractionResult{}
		}},
	})

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Processed != 0 {
		t.Fatalf("report = %+v", report)
	}
}
