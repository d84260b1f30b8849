package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ledger"
)

// Pipeline chains the three stages over one shared ledger.
type Pipeline struct {
	ingest   *Ingest
	extract  *Extract
	classify *Classify
	logger   *slog.Logger
}

// NewPipeline constructs the full three-stage run.
func NewPipeline(ingest *Ingest, extract *Extract, classify *Classify, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		ingest:   ingest,
		extract:  extract,
		classify: classify,
		logger:   logger.With("component", "pipeline"),
	}
}

// Run executes ingest, extract and classify in order. A stage error stops
// the chain; per-article failures inside a stage do not.
func (p *Pipeline) Run(ctx context.Context) error {
	if _, err := p.ingest.Run(ctx); err != nil {
		return fmt.Errorf("ingest stage: %w", err)
	}
	if _, err := p.extract.Run(ctx); err != nil {
		return fmt.Errorf("extract stage: %w", err)
	}
	if _, err := p.classify.Run(ctx); err != nil {
		return fmt.Errorf("classify stage: %w", err)
	}
	return nil
}

// Status reports the ledger composition by lifecycle state.
func Status(store *ledger.Ledger) map[domain.State]int {
	return store.CountByState()
}
