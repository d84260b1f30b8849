package feed

import (
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// dateLayouts cover the published-date formats seen across outlets when the
// feed library cannot parse the value itself.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

var (
	slashDateExpr   = regexp.MustCompile(`/(20\d{2})/(\d{1,2})/(\d{1,2})(?:/|$)`)
	compactDateExpr = regexp.MustCompile(`/(20\d{2})(\d{2})(\d{2})(?:/|[-_.])`)
)

var _ ports.FeedParser = (*Parser)(nil)

// Parser converts raw feed documents into normalized items.
type Parser struct {
	inner     *gofeed.Parser
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewParser builds a parser; retentionDays <= 0 disables the stale cutoff.
func NewParser(retentionDays int, logger *slog.Logger) *Parser {
	var retention time.Duration
	if retentionDays > 0 {
		retention = time.Duration(retentionDays) * 24 * time.Hour
	}
	return &Parser{
		inner:     gofeed.NewParser(),
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Parse extracts normalized items from one feed document. Entries without a
// headline, entries missing both link and description, and entries older
// than the retention window are dropped.
func (p *Parser) Parse(xml, feedURL string, source domain.FeedSource) []domain.FeedItem {
	if strings.TrimSpace(xml) == "" {
		return nil
	}

	parsed, err := p.inner.ParseString(xml)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("malformed feed", "url", feedURL, "error", err)
		}
		return nil
	}

	var cutoff time.Time
	if p.retention > 0 {
		cutoff = p.now().Add(-p.retention)
	}

	items := make([]domain.FeedItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		headline := strings.TrimSpace(entry.Title)
		if headline == "" {
			continue
		}

		link := strings.TrimSpace(entry.Link)
		description := StripHTML(firstNonEmpty(entry.Description, entry.Content))
		if link == "" && description == "" {
			continue
		}

		rawDate := firstNonEmpty(entry.Published, entry.Updated)
		published, ok := entryTime(entry, rawDate, link)

		if ok && !cutoff.IsZero() && published.Before(cutoff) {
			if p.logger != nil {
				p.logger.Debug("dropping stale entry", "url", link, "published", published)
			}
			continue
		}

		item := domain.FeedItem{
			Media:       source.Name,
			FeedURL:     feedURL,
			Headline:    headline,
			Link:        link,
			Description: description,
			RawDate:     rawDate,
			Origin:      source.Origin,
			Language:    source.Language,
		}
		if ok {
			item.Date = published.UTC().Format(time.RFC3339)
		}

		items = append(items, item)
	}

	return items
}

// entryTime resolves the published time from the parsed entry, the raw
// date string, and finally a date embedded in the article URL path.
func entryTime(entry *gofeed.Item, rawDate, link string) (time.Time, bool) {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed, true
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed, true
	}

	if rawDate != "" {
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, rawDate); err == nil {
				return ts, true
			}
		}
	}

	return dateFromURL(link)
}

// dateFromURL recovers /2025/08/31/ and /20250831- shaped dates from the
// article path, a common pattern on outlets with sparse feed metadata.
func dateFromURL(link string) (time.Time, bool) {
	if link == "" {
		return time.Time{}, false
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return time.Time{}, false
	}

	for _, expr := range []*regexp.Regexp{slashDateExpr, compactDateExpr} {
		m := expr.FindStringSubmatch(parsed.Path)
		if m == nil {
			continue
		}
		ts, err := time.Parse("2006-1-2", m[1]+"-"+strings.TrimLeft(m[2], "0")+"-"+strings.TrimLeft(m[3], "0"))
		if err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}

// StripHTML reduces markup to clean text: tags removed, entities decoded,
// whitespace collapsed.
func StripHTML(raw string) string {
	if raw == "" {
		return ""
	}

	text := raw
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
		text = doc.Text()
	}

	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
