package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"NewsScanner/internal/domain"
)

type classificationPayload struct {
	Topic     string `json:"topic"`
	Sentiment string `json:"sentiment_category"`
	Summary   string `json:"summary"`
}

// ParseClassification validates the raw model output into a Classification.
// Malformed output gets one salvage pass: the largest balanced JSON object
// embedded in the text is re-parsed before giving up. Topic and sentiment
// must normalize to enum members.
func ParseClassification(raw string) (domain.Classification, error) {
	var payload classificationPayload

	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		salvaged := largestJSONObject(raw)
		if salvaged == "" {
			return domain.Classification{}, fmt.Errorf("no JSON object in model output: %s", clip(raw, 200))
		}
		if err := json.Unmarshal([]byte(salvaged), &payload); err != nil {
			return domain.Classification{}, fmt.Errorf("salvaged JSON still invalid: %w", err)
		}
	}

	if payload.Topic == "" || payload.Sentiment == "" {
		return domain.Classification{}, fmt.Errorf("model output missing topic or sentiment_category")
	}

	topic, ok := normalizeCategory(payload.Topic, append(domain.SentinelTopics, domain.Topics...))
	if !ok {
		return domain.Classification{}, fmt.Errorf("topic %q outside known categories", payload.Topic)
	}

	sentiment, ok := normalizeCategory(payload.Sentiment, domain.Sentiments)
	if !ok {
		return domain.Classification{}, fmt.Errorf("sentiment %q outside known categories", payload.Sentiment)
	}

	return domain.Classification{
		Topic:     topic,
		Sentiment: sentiment,
		Summary:   strings.TrimSpace(payload.Summary),
	}, nil
}

// normalizeCategory maps a model answer onto the closed vocabulary: exact
// match first, then case-insensitive substring containment either way. The
// longest containment wins so "very negative" resolves to "Very negative"
// rather than "Negative".
func normalizeCategory(value string, categories []string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, cat := range categories {
		if value == cat {
			return cat, true
		}
	}

	lower := strings.ToLower(value)
	best := ""
	for _, cat := range categories {
		catLower := strings.ToLower(cat)
		if strings.Contains(lower, catLower) || strings.Contains(catLower, lower) {
			if len(cat) > len(best) {
				best = cat
			}
		}
	}
	return best, best != ""
}

// largestJSONObject returns the longest balanced {...} span in the text,
// brace counting outside string literals.
func largestJSONObject(text string) string {
	var (
		best       string
		start      = -1
		depth      int
		inString   bool
		escapeNext bool
	)

	for i, r := range text {
		if inString {
			switch {
			case escapeNext:
				escapeNext = false
			case r == '\\':
				escapeNext = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				if candidate := text[start : i+1]; len(candidate) > len(best) {
					best = candidate
				}
				start = -1
			}
		}
	}

	return best
}
