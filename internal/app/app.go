package app

import (
	"context"
	"fmt"
	"log/slog"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/infrastructure/classify"
	"NewsScanner/internal/infrastructure/download"
	"NewsScanner/internal/infrastructure/extract"
	"NewsScanner/internal/infrastructure/feed"
	"NewsScanner/internal/ledger"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/usecase"
)

// Application wires configuration into the pipeline stages over one shared
// ledger.
type Application struct {
	cfg   config.Config
	store *ledger.Ledger

	ingest   *usecase.Ingest
	extract  *usecase.Extract
	classify *usecase.Classify
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store := ledger.Open(cfg.Ledger.Path, baseLogger.With("component", "ledger"))

	downloader := download.NewManager(cfg.Downloader, nil, baseLogger)

	sources := feed.LoadSources(cfg.Feeds, baseLogger.With("component", "feeds"))
	ingestStage := usecase.NewIngest(usecase.IngestDeps{
		Sources: sources,
		Fetcher: feed.NewFetcher(downloader, cfg.Processing.Concurrency, baseLogger.With("component", "feeds")),
		Parser:  feed.NewParser(cfg.Ingest.RetentionDays, baseLogger.With("component", "feeds")),
		Filter:  feed.NewKeywordFilter(cfg.Ingest.Keywords),
		Ledger:  store,
		Logger:  baseLogger,
	})

	engine := extract.NewEngine(
		extract.NewSelectorRegistry(cfg.Extractor.DomainSelectors),
		extract.NewCleaner(cfg.Cleaner.RemovePatterns, cfg.Cleaner.MaxConsecutiveGaps),
		cfg.Extractor.MinTextLength,
		baseLogger,
	)
	extractStage := usecase.NewExtract(usecase.ExtractDeps{
		Ledger:      store,
		Fetcher:     downloader,
		Extractor:   engine,
		Concurrency: cfg.Processing.Concurrency,
		Logger:      baseLogger,
	})

	classifyStage := usecase.NewClassify(usecase.ClassifyDeps{
		Ledger:         store,
		Completer:      classify.NewClient(cfg.Classifier, baseLogger),
		Credentials:    classify.NewRegistry(cfg.Classifier.CredentialVars, cfg.Classifier.DefaultCooldownSeconds, baseLogger),
		CredentialVars: cfg.Classifier.CredentialVars,
		SaveEvery:      cfg.Classifier.SaveEvery,
		Logger:         baseLogger,
	})

	return &Application{
		cfg:      cfg,
		store:    store,
		ingest:   ingestStage,
		extract:  extractStage,
		classify: classifyStage,
		pipeline: usecase.NewPipeline(ingestStage, extractStage, classifyStage, baseLogger),
	}
}

// load refreshes the in-memory ledger from disk so every command starts
// from the persisted state.
func (a *Application) load() error {
	if _, err := a.store.Load(); err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	return nil
}

// Ingest runs the feed ingestion stage.
func (a *Application) Ingest(ctx context.Context) (usecase.IngestReport, error) {
	if err := a.load(); err != nil {
		return usecase.IngestReport{}, err
	}
	return a.ingest.Run(ctx)
}

// Extract runs the download and extraction stage.
func (a *Application) Extract(ctx context.Context) (usecase.ExtractReport, error) {
	if err := a.load(); err != nil {
		return usecase.ExtractReport{}, err
	}
	return a.extract.Run(ctx)
}

// Classify runs the classification stage.
func (a *Application) Classify(ctx context.Context) (usecase.ClassifyReport, error) {
	if err := a.load(); err != nil {
		return usecase.ClassifyReport{}, err
	}
	return a.classify.Run(ctx)
}

// Run executes all three stages in order.
func (a *Application) Run(ctx context.Context) error {
	if err := a.load(); err != nil {
		return err
	}
	return a.pipeline.Run(ctx)
}

// Status returns the ledger composition by state plus the total row count.
func (a *Application) Status() (map[domain.State]int, int, error) {
	if err := a.load(); err != nil {
		return nil, 0, err
	}
	return usecase.Status(a.store), a.store.Total(), nil
}
