package feed

import (
	"testing"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
)

func TestLoadSourcesValidatesAndDeduplicates(t *testing.T) {
	t.Parallel()

	cfgs := []config.FeedConfig{
		{
			Name:     "Example Daily",
			Origin:   "foreign",
			Language: "es",
			URLs: []string{
				"https://example.org/rss",
				"https://example.org/rss",
				"ftp://example.org/rss",
				"not a url",
				"file://feeds/static.xml",
			},
		},
		{
			Name: "Mirror Outlet",
			URLs: []string{"https://example.org/rss"},
		},
	}

	sources := LoadSources(cfgs, nil)

	if len(sources) != 1 {
		t.Fatalf("mirror outlet carries only a duplicate URI and must vanish, got %d sources", len(sources))
	}

	src := sources[0]
	if len(src.URLs) != 2 {
		t.Fatalf("expected 2 valid unique URIs, got %v", src.URLs)
	}
	if src.Origin != "foreign" || src.Language != "es" {
		t.Fatalf("tags not carried: %+v", src)
	}
}

func TestLoadSourcesAppliesDefaults(t *testing.T) {
	t.Parallel()

	sources := LoadSources([]config.FeedConfig{
		{Name: "", URLs: []string{"https://example.org/rss"}},
	}, nil)

	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].Name != "unknown" || sources[0].Origin != "domestic" || sources[0].Language != "en" {
		t.Fatalf("defaults not applied: %+v", sources[0])
	}
}

func TestKeywordFilter(t *testing.T) {
	t.Parallel()

	f := NewKeywordFilter([]string{"china", "beijing"})

	match := domain.FeedItem{Headline: "Trade talks resume", Description: "Officials in Beijing met today."}
	if !f.Matches(match) {
		t.Fatalf("expected keyword match")
	}

	partial := domain.FeedItem{Headline: "Crockery sale", Description: "Fine china plates half price."}
	if !f.Matches(partial) {
		t.Fatalf("word-boundary match on 'china' expected")
	}

	miss := domain.FeedItem{Headline: "Local sports roundup", Description: "Nothing relevant."}
	if f.Matches(miss) {
		t.Fatalf("unexpected match")
	}

	kept := f.Apply([]domain.FeedItem{match, miss})
	if len(kept) != 1 {
		t.Fatalf("expected 1 kept item, got %d", len(kept))
	}

	empty := NewKeywordFilter(nil)
	if !empty.Matches(miss) {
		t.Fatalf("empty keyword list keeps everything")
	}
}
