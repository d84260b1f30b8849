package feed

import (
	"regexp"
	"strings"

	"NewsScanner/internal/domain"
)

// KeywordFilter keeps only items whose headline or description mentions one
// of the configured keywords, matched case-insensitively on word boundaries.
// An empty keyword list keeps everything.
type KeywordFilter struct {
	patterns []*regexp.Regexp
}

// NewKeywordFilter compiles the keyword list; unusable patterns are skipped.
func NewKeywordFilter(keywords []string) *KeywordFilter {
	f := &KeywordFilter{}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		expr, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			continue
		}
		f.patterns = append(f.patterns, expr)
	}
	return f
}

// Matches reports whether the item mentions any keyword.
func (f *KeywordFilter) Matches(item domain.FeedItem) bool {
	if len(f.patterns) == 0 {
		return true
	}

	text := item.Headline + " " + item.Description
	for _, expr := range f.patterns {
		if expr.MatchString(text) {
			return true
		}
	}
	return false
}

// Apply filters a slice of items, preserving order.
func (f *KeywordFilter) Apply(items []domain.FeedItem) []domain.FeedItem {
	if len(f.patterns) == 0 {
		return items
	}

	kept := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			kept = append(kept, item)
		}
	}
	return kept
}
