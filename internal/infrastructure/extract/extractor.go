package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

const defaultMinTextLength = 200

// Method tags recorded on extraction results.
const (
	MethodSelectors   = "selectors"
	MethodGeneric     = "generic"
	MethodDescription = "description"
	MethodNone        = "none"
)

// Engine runs the extraction strategy chain: domain selectors, generic
// containers, then the feed description. The first strategy that clears
// the minimum length after cleaning wins; otherwise the longest partial
// survives with status insufficient.
type Engine struct {
	registry *SelectorRegistry
	cleaner  *Cleaner
	minText  int
	logger   *slog.Logger
}

var _ ports.Extractor = (*Engine)(nil)

// NewEngine wires the selector registry and cleaner.
func NewEngine(registry *SelectorRegistry, cleaner *Cleaner, minTextLength int, logger *slog.Logger) *Engine {
	if minTextLength <= 0 {
		minTextLength = defaultMinTextLength
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: registry,
		cleaner:  cleaner,
		minText:  minTextLength,
		logger:   logger.With("component", "extractor"),
	}
}

// Extract runs the chain over one downloaded page. The description comes
// from the feed entry and acts as the final fallback.
func (e *Engine) Extract(html, pageURL, description string) domain.ExtractionResult {
	var (
		bestText   string
		bestLen    int
		bestMethod = MethodNone
	)

	// Lengths are counted in runes throughout, both for acceptance and
	// for picking the longest partial.
	consider := func(text, method string) bool {
		cleaned := e.cleaner.Clean(text)
		runes := len([]rune(cleaned))
		if runes >= e.minText {
			bestText = cleaned
			bestMethod = method
			return true
		}
		if runes > bestLen {
			bestText = cleaned
			bestLen = runes
			bestMethod = method
		}
		return false
	}

	if html != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			e.logger.Warn("unparseable document", "url", pageURL, "error", err)
			return domain.ExtractionResult{Method: MethodNone, Status: domain.ExtractionError}
		}
		stripBoilerplate(doc)

		for _, selector := range e.registry.Resolve(pageURL) {
			if consider(collectText(doc, selector), MethodSelectors) {
				return e.accept(bestText, bestMethod)
			}
		}
		for _, selector := range e.registry.Generic() {
			if consider(collectText(doc, selector), MethodGeneric) {
				return e.accept(bestText, bestMethod)
			}
		}
	}

	if consider(description, MethodDescription) {
		return e.accept(bestText, bestMethod)
	}

	if bestText == "" {
		bestMethod = MethodNone
	}
	return domain.ExtractionResult{
		Text:   bestText,
		Method: bestMethod,
		Status: domain.ExtractionInsufficient,
	}
}

func (e *Engine) accept(text, method string) domain.ExtractionResult {
	return domain.ExtractionResult{
		Text:     text,
		Language: DetectLanguage(text),
		Method:   method,
		Status:   domain.ExtractionOK,
	}
}

func stripBoilerplate(doc *goquery.Document) {
	doc.Find(strings.Join(boilerplateSelectors, ", ")).Remove()
}

// collectText gathers paragraph text under the first matching container,
// falling back to the container's own text when it holds no paragraphs.
func collectText(doc *goquery.Document, selector string) string {
	container := doc.Find(selector).First()
	if container.Length() == 0 {
		return ""
	}

	var parts []string
	container.Find("p, h2, h3, li").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return strings.TrimSpace(container.Text())
	}
	return strings.Join(parts, "\n\n")
}
