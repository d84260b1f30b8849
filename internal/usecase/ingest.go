package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/infrastructure/feed"
	"NewsScanner/internal/ledger"
	"NewsScanner/internal/ports"
)

// IngestDeps wires the feed layer and the ledger into the ingest stage.
type IngestDeps struct {
	Sources []domain.FeedSource
	Fetcher *feed.Fetcher
	Parser  ports.FeedParser
	Filter  *feed.KeywordFilter
	Ledger  *ledger.Ledger
	Logger  *slog.Logger
}

// IngestReport summarizes one ingest pass.
type IngestReport struct {
	Feeds        int
	FeedFailures int
	Parsed       int
	Kept         int
	Added        int
}

// Ingest pulls every configured feed, normalizes and filters the entries,
// and admits unseen articles into the ledger in state new.
type Ingest struct {
	sources []domain.FeedSource
	fetcher *feed.Fetcher
	parser  ports.FeedParser
	filter  *feed.KeywordFilter
	store   *ledger.Ledger
	logger  *slog.Logger
}

// NewIngest constructs the ingest stage.
func NewIngest(deps IngestDeps) *Ingest {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingest{
		sources: deps.Sources,
		fetcher: deps.Fetcher,
		parser:  deps.Parser,
		filter:  deps.Filter,
		store:   deps.Ledger,
		logger:  logger.With("component", "ingest"),
	}
}

// Run executes one ingest pass. Per-feed failures are logged and counted,
// never fatal; only context cancellation or a ledger save failure aborts.
func (i *Ingest) Run(ctx context.Context) (IngestReport, error) {
	var report IngestReport

	results := i.fetcher.FetchAll(ctx, i.sources)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	var items []domain.FeedItem
	for _, res := range results {
		report.Feeds++
		if !res.Result.OK() {
			report.FeedFailures++
			i.logger.Warn("feed unavailable",
				"feed", res.URL, "source", res.Source.Name,
				"status", res.Result.StatusCode, "error", res.Result.Err)
			continue
		}
		items = append(items, i.parser.Parse(res.Result.Body, res.URL, res.Source)...)
	}
	report.Parsed = len(items)

	if i.filter != nil {
		items = i.filter.Apply(items)
	}
	items = feed.Deduplicate(items, i.logger)
	report.Kept = len(items)

	for _, item := range items {
		rec := domain.NewRecord(item)
		if i.store.Add(rec) {
			report.Added++
		}
	}

	if i.store.Dirty() {
		if err := i.store.Save(); err != nil {
			return report, fmt.Errorf("save ledger: %w", err)
		}
	}

	i.logger.Info("ingest pass finished",
		"feeds", report.Feeds, "failures", report.FeedFailures,
		"parsed", report.Parsed, "kept", report.Kept, "added", report.Added)
	return report, nil
}
