package usecase

import (
	"context"
	"fmt"
)

// Failover tries an ordered candidate list until one attempt succeeds.
// Candidates the Skip predicate rejects are passed over without counting as
// attempts; recoverable attempt failures are reported through OnFailure and
// the iteration moves on. The run as a whole fails only when no candidate
// succeeded.
type Failover struct {
	Candidates []string
	Skip       func(id string) bool
	Attempt    func(ctx context.Context, id string) error
	OnFailure  func(id string, err error)
}

// Run walks the candidates in order. Returns nil on the first successful
// attempt, the context error on cancellation, and otherwise an error
// wrapping the last attempt failure.
func (f Failover) Run(ctx context.Context) error {
	if len(f.Candidates) == 0 {
		return fmt.Errorf("no candidates configured")
	}

	var (
		lastErr   error
		attempted int
		skipped   int
	)

	for _, id := range f.Candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		if f.Skip != nil && f.Skip(id) {
			skipped++
			continue
		}

		attempted++
		err := f.Attempt(ctx, id)
		if err == nil {
			return nil
		}

		lastErr = err
		if f.OnFailure != nil {
			f.OnFailure(id, err)
		}
	}

	if attempted == 0 {
		return fmt.Errorf("all %d candidates unavailable", skipped)
	}
	return fmt.Errorf("all %d attempted candidates failed: %w", attempted, lastErr)
}
