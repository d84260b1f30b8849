package ports

import (
	"context"

	"NewsScanner/internal/domain"
)

// ResourceFetcher retrieves feeds and article pages through the shared
// download policies (politeness, retries, block detection).
type ResourceFetcher interface {
	Fetch(ctx context.Context, url string) domain.DownloadResult
}

// FeedParser converts a raw feed document into normalized items.
type FeedParser interface {
	Parse(xml, feedURL string, source domain.FeedSource) []domain.FeedItem
}

// Extractor runs the strategy chain over downloaded HTML. The feed-supplied
// description serves as the final fallback strategy.
type Extractor interface {
	Extract(html, pageURL, description string) domain.ExtractionResult
}

// ChatCompleter submits one classification request using a specific
// credential and returns the raw model output.
type ChatCompleter interface {
	Complete(ctx context.Context, req domain.ClassificationRequest, apiKey string) (string, error)
}

// CredentialRegistry tracks rate-limit cooldowns over the credential pool.
type CredentialRegistry interface {
	IsAvailable(id string) bool
	SetCooldown(id string, seconds int)
	WaitTime(id string) int
	Available() []string
	NextAvailable() (string, int, bool)
}
