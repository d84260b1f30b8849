package classify

import (
	"fmt"
	"strings"

	"NewsScanner/internal/domain"
)

const promptHeader = `Instructions:
Classify the following news article using only the content provided. Do not invent information or interpret beyond what is explicit. Judge the coverage as presented by the outlet, taking its origin and editorial context into account.

If the source text is not in English, still write the final summary in English, not as a literal translation but as two clear and concise sentences summarizing the content.

If the article touches several areas, pick only the one that dominates the text.

Your output must be exclusively one valid JSON object. Do not add comments, explanations or text outside the JSON.

If the content is not a real news article (cookie walls, section indexes, truncated or empty pages), answer with topic "Not an article". If the article is sports coverage, answer with topic "Sports".`

// BuildPrompt renders the classification instructions, the closed category
// lists and the article fields into a single user message.
func BuildPrompt(req domain.ClassificationRequest) string {
	var b strings.Builder

	b.WriteString(promptHeader)
	b.WriteString("\n\nTopic categories:\n\n")
	b.WriteString(strings.Join(domain.Topics, "\n\n"))
	b.WriteString("\n\nSentiment categories:\n\n")
	b.WriteString(strings.Join(domain.Sentiments, "\n\n"))

	b.WriteString("\n\nContent to analyze:\n\n")
	fmt.Fprintf(&b, "Outlet: %s\n\n", req.Media)
	fmt.Fprintf(&b, "Outlet origin: %s\n\n", req.Origin)
	fmt.Fprintf(&b, "Text language: %s\n\n", req.Language)
	fmt.Fprintf(&b, "Date: %s\n\n", req.Date)
	fmt.Fprintf(&b, "Headline: %s\n\n", req.Headline)
	fmt.Fprintf(&b, "Short description: %s\n\n", req.Description)
	fmt.Fprintf(&b, "Full text: %s\n\n", req.FullText)

	b.WriteString("Your output must follow this exact JSON format:\n\n")
	b.WriteString("{\n  \"topic\": \"\",\n  \"sentiment_category\": \"\",\n  \"summary\": \"\"\n}")

	return b.String()
}
