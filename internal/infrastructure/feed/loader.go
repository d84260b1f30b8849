// Package feed turns declarative feed configuration into normalized,
// deduplicated items ready for ledger admission.
package feed

import (
	"log/slog"
	"net/url"
	"strings"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
)

// LoadSources validates and deduplicates the configured feed list. Invalid
// URIs are dropped with a warning; a URI appearing under several outlets is
// kept only for the first.
func LoadSources(cfgs []config.FeedConfig, logger *slog.Logger) []domain.FeedSource {
	seen := map[string]struct{}{}
	sources := make([]domain.FeedSource, 0, len(cfgs))

	for _, fc := range cfgs {
		name := strings.TrimSpace(fc.Name)
		if name == "" {
			name = "unknown"
		}

		src := domain.FeedSource{
			Name:     name,
			Origin:   defaultString(fc.Origin, "domestic"),
			Language: defaultString(fc.Language, "en"),
		}

		for _, raw := range fc.URLs {
			u := strings.TrimSpace(raw)
			if !validFeedURL(u) {
				if logger != nil {
					logger.Warn("ignoring invalid feed url", "source", name, "url", u)
				}
				continue
			}
			if _, ok := seen[u]; ok {
				if logger != nil {
					logger.Debug("ignoring duplicate feed url", "source", name, "url", u)
				}
				continue
			}
			seen[u] = struct{}{}
			src.URLs = append(src.URLs, u)
		}

		if len(src.URLs) > 0 {
			sources = append(sources, src)
		}
	}

	return sources
}

// validFeedURL accepts network feeds plus local files for offline/static
// feeds (pre-generated XML on disk).
func validFeedURL(raw string) bool {
	if raw == "" {
		return false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	switch parsed.Scheme {
	case "http", "https":
		return parsed.Host != ""
	case "file":
		return parsed.Path != "" || parsed.Host != ""
	default:
		return false
	}
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
