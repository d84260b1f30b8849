package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"NewsScanner/internal/domain"
)

// Deduplicate removes duplicate items, preferring the link as identity and
// falling back to a content hash of headline|description when an item has
// no link. First occurrence wins.
func Deduplicate(items []domain.FeedItem, logger *slog.Logger) []domain.FeedItem {
	seenLinks := map[string]struct{}{}
	seenHashes := map[string]struct{}{}

	unique := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		if item.Link != "" {
			if _, ok := seenLinks[item.Link]; ok {
				continue
			}
			seenLinks[item.Link] = struct{}{}
			unique = append(unique, item)
			continue
		}

		hash := contentHash(item.Headline, item.Description)
		if _, ok := seenHashes[hash]; ok {
			continue
		}
		seenHashes[hash] = struct{}{}
		unique = append(unique, item)
	}

	if removed := len(items) - len(unique); removed > 0 && logger != nil {
		logger.Info("removed duplicate items", "removed", removed, "total", len(items))
	}
	return unique
}

func contentHash(headline, description string) string {
	sum := sha256.Sum256([]byte(headline + "|" + description))
	return hex.EncodeToString(sum[:8])
}
