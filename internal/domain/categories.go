package domain

// Topics is the closed vocabulary the classification service must answer from.
var Topics = []string{
	"Economy",
	"Domestic politics",
	"Geopolitics",
	"Social policy",
	"Territory and environment",
	"Culture and science",
	"Industrial technology",
	"Consumer technology",
}

// Sentiments is the closed vocabulary for the portrayal category.
var Sentiments = []string{
	"Threat",
	"Very positive",
	"Positive",
	"Neutral",
	"Negative",
	"Very negative",
}

// Sentinel topics carry pipeline-control meaning instead of a category.
const (
	// TopicNotArticle marks content that was not a real article
	// (cookie walls, section indexes, truncated pages). The record is
	// reset to state "new" with its text cleared so extraction reruns.
	TopicNotArticle = "Not an article"

	// TopicOutOfScope marks coverage the ledger does not track at all;
	// the record is deleted instead of updated.
	TopicOutOfScope = "Sports"
)

// SentinelTopics lists values the orchestrator intercepts before storing.
var SentinelTopics = []string{TopicNotArticle, TopicOutOfScope}
