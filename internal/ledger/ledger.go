// Package ledger is the durable, URL-keyed article store shared by every
// pipeline stage. Rows live in a fixed-column CSV that is loaded wholesale on
// open and rewritten wholesale on save.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"NewsScanner/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// columns is the on-disk contract; URL is the primary key.
var columns = []string{
	"url", "media", "origin", "language", "headline", "date", "description",
	"full_text", "topic", "sentiment", "summary", "state", "last_processed",
	"error_message",
}

// Fields carries a partial update; nil pointers leave the column untouched.
type Fields struct {
	Language    *string
	Headline    *string
	Date        *string
	Description *string
	FullText    *string
	Topic       *string
	Sentiment   *string
	Summary     *string
	State       *domain.State
	ErrorMsg    *string
}

// Ledger keeps the full table in memory with a URL index. The in-memory
// table is mutex-protected so stage workers may mutate concurrently, but
// Save calls must still be serialized by the caller: there is no write lock
// spanning mutate+persist, a documented limitation rather than a promise.
type Ledger struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	records []*domain.Record
	index   map[string]*domain.Record
	dirty   bool

	now func() time.Time
}

// Open builds a ledger over the given CSV path without touching disk.
func Open(path string, logger *slog.Logger) *Ledger {
	return &Ledger{
		path:   path,
		logger: logger,
		index:  map[string]*domain.Record{},
		now:    time.Now,
	}
}

// Load reads all persisted rows into memory, replacing prior contents.
// A missing file is not an error; it will be created on Save.
func (l *Ledger) Load() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = nil
	l.index = map[string]*domain.Record{}
	l.dirty = false

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.debug("ledger file absent, starting empty", "path", l.path)
			return 0, nil
		}
		return 0, fmt.Errorf("open ledger %s: %w", l.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read ledger header: %w", err)
	}

	pos := map[string]int{}
	for i, name := range header {
		pos[name] = i
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read ledger row: %w", err)
		}

		rec := recordFromRow(row, pos)
		if rec.URL == "" {
			continue
		}
		if _, ok := l.index[rec.URL]; ok {
			continue
		}
		l.records = append(l.records, &rec)
		l.index[rec.URL] = &rec
	}

	l.debug("ledger loaded", "path", l.path, "records", len(l.records))
	return len(l.records), nil
}

// Save atomically rewrites the whole table: the CSV is written to a temp
// file in the same directory and renamed over the target.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(columns); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger header: %w", err)
	}

	for _, rec := range l.records {
		if err := writer.Write(rowFromRecord(rec)); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("write ledger row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flush ledger: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp ledger: %w", err)
	}

	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger %s: %w", l.path, err)
	}

	l.dirty = false
	l.debug("ledger saved", "path", l.path, "records", len(l.records))
	return nil
}

// Exists reports whether a URL is already tracked.
func (l *Ledger) Exists(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.index[url]
	return ok
}

// Add inserts a record; it returns false when the URL is already present
// or empty, leaving the existing row untouched.
func (l *Ledger) Add(rec domain.Record) bool {
	if rec.URL == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[rec.URL]; ok {
		return false
	}

	if rec.State == "" {
		rec.State = domain.StateNew
	}
	rec.LastProcessed = l.now()

	l.records = append(l.records, &rec)
	l.index[rec.URL] = &rec
	l.dirty = true
	return true
}

// Update applies the non-nil fields to an existing record and stamps its
// last-processed time. Returns false when the URL is unknown.
func (l *Ledger) Update(url string, fields Fields) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.index[url]
	if !ok {
		return false
	}

	if fields.Language != nil {
		rec.Language = *fields.Language
	}
	if fields.Headline != nil {
		rec.Headline = *fields.Headline
	}
	if fields.Date != nil {
		rec.Date = *fields.Date
	}
	if fields.Description != nil {
		rec.Description = *fields.Description
	}
	if fields.FullText != nil {
		rec.FullText = *fields.FullText
	}
	if fields.Topic != nil {
		rec.Topic = *fields.Topic
	}
	if fields.Sentiment != nil {
		rec.Sentiment = *fields.Sentiment
	}
	if fields.Summary != nil {
		rec.Summary = *fields.Summary
	}
	if fields.State != nil {
		rec.State = *fields.State
	}
	if fields.ErrorMsg != nil {
		rec.ErrorMessage = *fields.ErrorMsg
	}

	rec.LastProcessed = l.now()
	l.dirty = true
	return true
}

// UpdateState moves a record to a new lifecycle state. The error message is
// stored only for the error state and cleared otherwise.
func (l *Ledger) UpdateState(url string, state domain.State, errMsg string) bool {
	if !state.Valid() {
		l.debug("rejecting unknown state", "state", string(state), "url", url)
		return false
	}

	msg := ""
	if state == domain.StateError {
		msg = errMsg
	}
	return l.Update(url, Fields{State: &state, ErrorMsg: &msg})
}

// Delete removes a record entirely. Returns false when the URL is unknown.
func (l *Ledger) Delete(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[url]; !ok {
		return false
	}

	kept := l.records[:0]
	for _, rec := range l.records {
		if rec.URL != url {
			kept = append(kept, rec)
		}
	}
	l.records = kept
	delete(l.index, url)
	l.dirty = true
	return true
}

// Get returns a copy of the record for a URL.
func (l *Ledger) Get(url string) (domain.Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.index[url]
	if !ok {
		return domain.Record{}, false
	}
	return *rec, true
}

// ByState returns copies of all records currently in the given state.
func (l *Ledger) ByState(state domain.State) []domain.Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.Record
	for _, rec := range l.records {
		if rec.State == state {
			out = append(out, *rec)
		}
	}
	return out
}

// CountByState tallies records per state. Unknown or legacy state values are
// counted under "new" without being rewritten.
func (l *Ledger) CountByState() map[domain.State]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := map[domain.State]int{}
	for _, state := range domain.KnownStates {
		counts[state] = 0
	}
	for _, rec := range l.records {
		if rec.State.Valid() {
			counts[rec.State]++
		} else {
			counts[domain.StateNew]++
		}
	}
	return counts
}

// Total returns the number of tracked records.
func (l *Ledger) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Dirty reports whether there are unsaved mutations.
func (l *Ledger) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

func (l *Ledger) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func recordFromRow(row []string, pos map[string]int) domain.Record {
	get := func(name string) string {
		i, ok := pos[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rec := domain.Record{
		URL:          get("url"),
		Media:        get("media"),
		Origin:       get("origin"),
		Language:     get("language"),
		Headline:     get("headline"),
		Date:         get("date"),
		Description:  get("description"),
		FullText:     get("full_text"),
		Topic:        get("topic"),
		Sentiment:    get("sentiment"),
		Summary:      get("summary"),
		State:        domain.State(get("state")),
		ErrorMessage: get("error_message"),
	}

	if ts, err := time.Parse(timeLayout, get("last_processed")); err == nil {
		rec.LastProcessed = ts
	}
	if rec.State == "" {
		rec.State = domain.StateNew
	}
	return rec
}

func rowFromRecord(rec *domain.Record) []string {
	stamp := ""
	if !rec.LastProcessed.IsZero() {
		stamp = rec.LastProcessed.Format(timeLayout)
	}

	return []string{
		rec.URL, rec.Media, rec.Origin, rec.Language, rec.Headline, rec.Date,
		rec.Description, rec.FullText, rec.Topic, rec.Sentiment, rec.Summary,
		string(rec.State), stamp, rec.ErrorMessage,
	}
}

// StringPtr is a small helper for building partial updates.
func StringPtr(s string) *string { return &s }

// StatePtr is a small helper for building partial updates.
func StatePtr(s domain.State) *domain.State { return &s }
