package classify

import (
	"strings"
	"testing"

	"NewsScanner/internal/domain"
)

func TestParseClassificationDirect(t *testing.T) {
	t.Parallel()

	got, err := ParseClassification(`{"topic":"Economy","sentiment_category":"Neutral","summary":"Two sentences. Right here."}`)
	if err != nil {
		t.Fatalf("ParseClassification: %v", err)
	}
	if got.Topic != "Economy" || got.Sentiment != "Neutral" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseClassificationSalvagesEmbeddedJSON(t *testing.T) {
	t.Parallel()

	raw := "Here is the classification you asked for:\n```json\n" +
		`{"topic":"Geopolitics","sentiment_category":"Negative","summary":"Summary text."}` +
		"\n```\nLet me know if you need anything else."

	got, err := ParseClassification(raw)
	if err != nil {
		t.Fatalf("ParseClassification: %v", err)
	}
	if got.Topic != "Geopolitics" || got.Sentiment != "Negative" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseClassificationPicksLargestObject(t *testing.T) {
	t.Parallel()

	raw := `{"note":"x"} preamble {"topic":"Culture and science","sentiment_category":"Positive","summary":"A longer balanced object wins."}`

	got, err := ParseClassification(raw)
	if err != nil {
		t.Fatalf("ParseClassification: %v", err)
	}
	if got.Topic != "Culture and science" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseClassificationRejectsMissingFields(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{"topic":"Economy","summary":"missing sentiment"}`,
		`{"sentiment_category":"Neutral","summary":"missing topic"}`,
		`no json at all`,
		``,
	}
	for _, raw := range cases {
		if _, err := ParseClassification(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseClassificationNormalizesCategories(t *testing.T) {
	t.Parallel()

	got, err := ParseClassification(`{"topic":"Topic: economy","sentiment_category":"very NEGATIVE","summary":"s"}`)
	if err != nil {
		t.Fatalf("ParseClassification: %v", err)
	}
	if got.Topic != "Economy" {
		t.Fatalf("topic = %q, want Economy", got.Topic)
	}
	if got.Sentiment != "Very negative" {
		t.Fatalf("sentiment = %q, want Very negative", got.Sentiment)
	}
}

func TestParseClassificationRejectsUnknownCategories(t *testing.T) {
	t.Parallel()

	if _, err := ParseClassification(`{"topic":"Astrology","sentiment_category":"Neutral","summary":"s"}`); err == nil {
		t.Fatal("unknown topic must be rejected")
	}
	if _, err := ParseClassification(`{"topic":"Economy","sentiment_category":"Ecstatic","summary":"s"}`); err == nil {
		t.Fatal("unknown sentiment must be rejected")
	}
}

func TestParseClassificationAcceptsSentinels(t *testing.T) {
	t.Parallel()

	got, err := ParseClassification(`{"topic":"Not an article","sentiment_category":"Neutral","summary":""}`)
	if err != nil {
		t.Fatalf("ParseClassification: %v", err)
	}
	if got.Topic != domain.TopicNotArticle {
		t.Fatalf("topic = %q", got.Topic)
	}

	got, err = ParseClassification(`{"topic":"Sports","sentiment_category":"Neutral","summary":""}`)
	if err != nil {
		t.Fatalf("ParseClassification: %v", err)
	}
	if got.Topic != domain.TopicOutOfScope {
		t.Fatalf("topic = %q", got.Topic)
	}
}

func TestBuildPromptCarriesVocabularies(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(domain.ClassificationRequest{
		Media:    "Outlet",
		Headline: "Headline here",
		FullText: "Body here",
	})

	for _, topic := range domain.Topics {
		if !strings.Contains(prompt, topic) {
			t.Fatalf("prompt missing topic %q", topic)
		}
	}
	for _, sentiment := range domain.Sentiments {
		if !strings.Contains(prompt, sentiment) {
			t.Fatalf("prompt missing sentiment %q", sentiment)
		}
	}
	if !strings.Contains(prompt, "Headline here") || !strings.Contains(prompt, "Body here") {
		t.Fatal("prompt missing article fields")
	}
	if !strings.Contains(prompt, "sentiment_category") {
		t.Fatal("prompt missing output format")
	}
}
