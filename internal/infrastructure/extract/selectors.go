// Package extract runs an ordered fallback chain of content-extraction
// strategies against downloaded article HTML.
package extract

import (
	"net/url"
	"strings"
)

// defaultDomainSelectors maps normalized hostnames to ordered article
// container selectors, most specific first.
var defaultDomainSelectors = map[string][]string{
	"elpais.com": {
		"article",
		"div.a_c_text",
		"div.articulo-cuerpo",
		`div[itemprop="articleBody"]`,
	},
	"elmundo.es": {
		"div.ue-l-article__body",
		"div.ue-c-article__body",
		"div.ue-c-article__premium-body",
	},
	"abc.es": {
		"div.voc-article-content",
		"div.cuerpo-texto",
		`article[itemprop="articleBody"]`,
	},
	"lavanguardia.com": {
		"div.article-modules",
		"div.article-body",
		"div.main-article-body",
	},
	"larazon.es": {
		"div.article-content",
		"div.texto-noticia",
		"div.article-body-content",
	},
}

// genericSelectors are the container fallbacks used when no domain entry
// matches.
var genericSelectors = []string{
	"article",
	"main",
	`div[role="main"]`,
	"div.content",
	"div.article",
}

// boilerplateSelectors are stripped from the document before paragraph text
// is collected.
var boilerplateSelectors = []string{
	"script", "style", "nav", "header", "footer", "aside", "form", "iframe",
	"div.comments", `div[id*="comment"]`, `section[id*="comment"]`,
	"div.related", `div[class*="related"]`,
	"div.subscription", `div[class*="subscri"]`, `div[class*="paywall"]`,
	"div.social", `div[class*="share"]`,
	"div.author-bio", `div[class*="author"]`,
	"div.tags", `div[class*="tag-"]`,
	"div.newsletter", `div[class*="newsletter"]`,
}

// SelectorRegistry resolves the selector list for a page once at startup,
// keyed by normalized hostname.
type SelectorRegistry struct {
	domains map[string][]string
}

// NewSelectorRegistry merges configured per-domain selectors over the
// built-in table. Configured entries replace built-in ones wholesale.
func NewSelectorRegistry(custom map[string][]string) *SelectorRegistry {
	domains := make(map[string][]string, len(defaultDomainSelectors)+len(custom))
	for host, selectors := range defaultDomainSelectors {
		domains[host] = selectors
	}
	for host, selectors := range custom {
		domains[NormalizeHost(host)] = selectors
	}
	return &SelectorRegistry{domains: domains}
}

// Resolve returns the ordered domain-specific selectors for a page URL,
// or nil when the hostname has no entry.
func (r *SelectorRegistry) Resolve(pageURL string) []string {
	host := hostOf(pageURL)
	if host == "" {
		return nil
	}
	return r.domains[host]
}

// Generic returns the container fallbacks shared by every domain.
func (r *SelectorRegistry) Generic() []string {
	return genericSelectors
}

// NormalizeHost lowercases and strips the www. prefix.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

func hostOf(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return NormalizeHost(parsed.Hostname())
}
