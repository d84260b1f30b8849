package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/infrastructure/classify"
	"NewsScanner/internal/ledger"
	"NewsScanner/internal/ports"
)

const defaultSaveEvery = 10

// ClassifyDeps wires the classification client, the credential registry and
// the ledger into the classify stage.
type ClassifyDeps struct {
	Ledger         *ledger.Ledger
	Completer      ports.ChatCompleter
	Credentials    ports.CredentialRegistry
	CredentialVars []string
	SaveEvery      int
	Logger         *slog.Logger
}

// ClassifyReport summarizes one classify pass.
type ClassifyReport struct {
	Processed  int
	Classified int
	Reset      int
	Deleted    int
	Failed     int
}

// Classify routes extracted articles to the classification service,
// failing over across the credential pool and applying sentinel topics.
type Classify struct {
	store       *ledger.Ledger
	completer   ports.ChatCompleter
	credentials ports.CredentialRegistry
	varNames    []string
	saveEvery   int
	logger      *slog.Logger

	lookupEnv func(string) string
}

// NewClassify constructs the classify stage; the periodic save interval
// defaults to 10 records.
func NewClassify(deps ClassifyDeps) *Classify {
	saveEvery := deps.SaveEvery
	if saveEvery <= 0 {
		saveEvery = defaultSaveEvery
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Classify{
		store:       deps.Ledger,
		completer:   deps.Completer,
		credentials: deps.Credentials,
		varNames:    deps.CredentialVars,
		saveEvery:   saveEvery,
		logger:      logger.With("component", "classify"),
		lookupEnv:   os.Getenv,
	}
}

// Run classifies every record in state extracted or error. Records whose
// classification fails stay in (or move to) state error with a message; the
// pass aborts only on cancellation or when saving fails.
func (c *Classify) Run(ctx context.Context) (ClassifyReport, error) {
	var report ClassifyReport

	pending := append(c.store.ByState(domain.StateExtracted), c.store.ByState(domain.StateError)...)
	if len(pending) == 0 {
		c.logger.Info("nothing to classify")
		return report, nil
	}

	sinceSave := 0
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return report, c.finish(report, err)
		}

		report.Processed++
		c.classifyOne(ctx, rec, &report)

		sinceSave++
		if sinceSave >= c.saveEvery && c.store.Dirty() {
			if err := c.store.Save(); err != nil {
				return report, fmt.Errorf("save ledger: %w", err)
			}
			sinceSave = 0
		}
	}

	return report, c.finish(report, nil)
}

func (c *Classify) finish(report ClassifyReport, runErr error) error {
	if c.store.Dirty() {
		if err := c.store.Save(); err != nil {
			return fmt.Errorf("save ledger: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	c.logger.Info("classify pass finished",
		"processed", report.Processed, "classified", report.Classified,
		"reset", report.Reset, "deleted", report.Deleted, "failed", report.Failed)
	return nil
}

// classifyOne runs the credential failover for a single record and applies
// the outcome to the ledger.
func (c *Classify) classifyOne(ctx context.Context, rec domain.Record, report *ClassifyReport) {
	req := domain.ClassificationRequest{
		Media:       rec.Media,
		Origin:      rec.Origin,
		Language:    rec.Language,
		Date:        rec.Date,
		Headline:    rec.Headline,
		Description: rec.Description,
		FullText:    rec.FullText,
	}

	var result domain.Classification

	failover := Failover{
		Candidates: c.varNames,
		Skip: func(id string) bool {
			if c.credentials.IsAvailable(id) {
				return false
			}
			c.logger.Debug("credential in cooldown",
				"credential", id, "waitSeconds", c.credentials.WaitTime(id))
			return true
		},
		Attempt: func(ctx context.Context, id string) error {
			key := c.lookupEnv(id)
			if key == "" {
				return fmt.Errorf("credential %s not set", id)
			}

			raw, err := c.completer.Complete(ctx, req, key)
			if err != nil {
				return err
			}

			parsed, err := classify.ParseClassification(raw)
			if err != nil {
				return err
			}
			result = parsed
			return nil
		},
		OnFailure: func(id string, err error) {
			var rle *classify.RateLimitError
			if errors.As(err, &rle) {
				c.credentials.SetCooldown(id, rle.WaitSeconds)
				return
			}
			c.logger.Warn("classification attempt failed", "credential", id, "error", err)
		},
	}

	if err := failover.Run(ctx); err != nil {
		report.Failed++
		c.store.UpdateState(rec.URL, domain.StateError, "classification failed: "+err.Error())
		return
	}

	switch result.Topic {
	case domain.TopicNotArticle:
		// The page was not a real article; clear the text so the next
		// extract pass retries from scratch.
		state := domain.StateNew
		empty := ""
		c.store.Update(rec.URL, ledger.Fields{
			FullText:  &empty,
			Topic:     &empty,
			Sentiment: &empty,
			Summary:   &empty,
			State:     &state,
			ErrorMsg:  &empty,
		})
		report.Reset++
	case domain.TopicOutOfScope:
		c.store.Delete(rec.URL)
		report.Deleted++
	default:
		state := domain.StateClassified
		empty := ""
		c.store.Update(rec.URL, ledger.Fields{
			Topic:     ledger.StringPtr(result.Topic),
			Sentiment: ledger.StringPtr(result.Sentiment),
			Summary:   ledger.StringPtr(result.Summary),
			State:     &state,
			ErrorMsg:  &empty,
		})
		report.Classified++
	}
}
