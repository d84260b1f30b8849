package domain

import "time"

// State tracks where a record sits in the processing lifecycle.
type State string

const (
	StateNew        State = "new"
	StateExtracted  State = "extracted"
	StateError      State = "error"
	StateClassified State = "classified"
)

// KnownStates lists the closed state enumeration in lifecycle order.
var KnownStates = []State{StateNew, StateExtracted, StateError, StateClassified}

// Valid reports whether s belongs to the closed enumeration.
func (s State) Valid() bool {
	switch s {
	case StateNew, StateExtracted, StateError, StateClassified:
		return true
	}
	return false
}

// FeedSource is a named outlet with one or more feed URIs.
type FeedSource struct {
	Name     string
	URLs     []string
	Origin   string
	Language string
}

// FeedItem is a normalized feed entry prior to ledger admission.
type FeedItem struct {
	Media       string
	FeedURL     string
	Headline    string
	Link        string
	Description string
	RawDate     string
	Date        string // ISO 8601, empty when unparseable
	Origin      string
	Language    string
}

// Record is the ledger entity, keyed by URL.
type Record struct {
	URL           string
	Media         string
	Origin        string
	Language      string
	Headline      string
	Date          string
	Description   string
	FullText      string
	Topic         string
	Sentiment     string
	Summary       string
	State         State
	LastProcessed time.Time
	ErrorMessage  string
}

// NewRecord builds a ledger record in state "new" from a feed item.
func NewRecord(item FeedItem) Record {
	return Record{
		URL:         item.Link,
		Media:       item.Media,
		Origin:      item.Origin,
		Language:    item.Language,
		Headline:    item.Headline,
		Date:        item.Date,
		Description: item.Description,
		State:       StateNew,
	}
}
