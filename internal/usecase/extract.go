package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ledger"
	"NewsScanner/internal/ports"
)

const defaultExtractWorkers = 5

// ExtractDeps wires the downloader and extraction engine into the extract
// stage.
type ExtractDeps struct {
	Ledger      *ledger.Ledger
	Fetcher     ports.ResourceFetcher
	Extractor   ports.Extractor
	Concurrency int
	Logger      *slog.Logger
}

// ExtractReport summarizes one extract pass, including which strategy
// produced each accepted text.
type ExtractReport struct {
	Processed int
	Extracted int
	Blocked   int
	Failed    int
	Methods   map[string]int
}

// Extract downloads pending articles and runs the extraction chain over a
// bounded worker pool.
type Extract struct {
	store     *ledger.Ledger
	fetcher   ports.ResourceFetcher
	extractor ports.Extractor
	workers   int
	logger    *slog.Logger
}

// NewExtract constructs the extract stage; concurrency defaults to 5.
func NewExtract(deps ExtractDeps) *Extract {
	workers := deps.Concurrency
	if workers <= 0 {
		workers = defaultExtractWorkers
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Extract{
		store:     deps.Ledger,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		workers:   workers,
		logger:    logger.With("component", "extract"),
	}
}

// Run processes every record in state new. Individual article failures land
// in the ledger as error states; the pass itself fails only on cancellation
// or when the final save does.
func (e *Extract) Run(ctx context.Context) (ExtractReport, error) {
	report := ExtractReport{Methods: make(map[string]int)}

	pending := e.store.ByState(domain.StateNew)
	if len(pending) == 0 {
		e.logger.Info("nothing to extract")
		return report, nil
	}

	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, rec := range pending {
		rec := rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			outcome := e.processOne(ctx, rec)

			mu.Lock()
			report.Processed++
			report.Methods[outcome.method]++
			switch {
			case outcome.blocked:
				report.Blocked++
				report.Failed++
			case outcome.failed:
				report.Failed++
			default:
				report.Extracted++
			}
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	if e.store.Dirty() {
		if saveErr := e.store.Save(); saveErr != nil {
			return report, fmt.Errorf("save ledger: %w", saveErr)
		}
	}
	if err != nil {
		return report, err
	}

	e.logger.Info("extract pass finished",
		"processed", report.Processed, "extracted", report.Extracted,
		"blocked", report.Blocked, "failed", report.Failed)
	return report, nil
}

type extractOutcome struct {
	method  string
	blocked bool
	failed  bool
}

// processOne fetches and extracts a single article, recording the outcome
// in the ledger. The feed description can still rescue a failed download,
// so extraction runs even without a body.
func (e *Extract) processOne(ctx context.Context, rec domain.Record) extractOutcome {
	dl := e.fetcher.Fetch(ctx, rec.URL)

	body := ""
	if dl.OK() {
		body = dl.Body
	}

	res := e.extractor.Extract(body, rec.URL, rec.Description)
	if res.Status == domain.ExtractionOK {
		state := domain.StateExtracted
		fields := ledger.Fields{
			FullText: ledger.StringPtr(res.Text),
			State:    &state,
			ErrorMsg: ledger.StringPtr(""),
		}
		if res.Language != "" && res.Language != rec.Language {
			fields.Language = ledger.StringPtr(res.Language)
		}
		e.store.Update(rec.URL, fields)
		return extractOutcome{method: res.Method}
	}

	msg := extractionFailureMessage(dl, res)
	e.store.UpdateState(rec.URL, domain.StateError, msg)
	e.logger.Warn("extraction failed", "url", rec.URL, "reason", msg)
	return extractOutcome{method: res.Method, blocked: dl.Blocked, failed: true}
}

func extractionFailureMessage(dl domain.DownloadResult, res domain.ExtractionResult) string {
	switch {
	case dl.Blocked:
		return fmt.Sprintf("blocked by server (HTTP %d)", dl.StatusCode)
	case dl.Err != "":
		return "download failed: " + dl.Err
	case dl.StatusCode >= 400:
		return fmt.Sprintf("download failed: HTTP %d", dl.StatusCode)
	case res.Status == domain.ExtractionError:
		return "content could not be parsed"
	default:
		return fmt.Sprintf("extracted text too short (%d chars)", len([]rune(res.Text)))
	}
}
