package domain

import "time"

// DownloadResult captures the outcome of fetching one resource. Transport
// and HTTP failures are carried here as values, never as errors.
type DownloadResult struct {
	URL        string
	Body       string
	StatusCode int
	Err        string
	FinalURL   string
	Elapsed    time.Duration
	Blocked    bool
}

// OK reports whether the fetch produced usable content.
func (r DownloadResult) OK() bool {
	return r.Err == "" && !r.Blocked && r.StatusCode >= 200 && r.StatusCode < 400 && r.Body != ""
}

// ExtractionStatus describes how the strategy chain ended.
type ExtractionStatus string

const (
	ExtractionOK           ExtractionStatus = "ok"
	ExtractionInsufficient ExtractionStatus = "insufficient"
	ExtractionError        ExtractionStatus = "error"
)

// ExtractionResult is the outcome of the extraction strategy chain. Method
// records which strategy produced the text, for observability.
type ExtractionResult struct {
	Text     string
	Language string
	Method   string
	Status   ExtractionStatus
}

// ClassificationRequest carries the article fields submitted to the
// classification service.
type ClassificationRequest struct {
	Media       string
	Origin      string
	Language    string
	Date        string
	Headline    string
	Description string
	FullText    string
}

// Classification is the validated structured response.
type Classification struct {
	Topic     string
	Sentiment string
	Summary   string
}
