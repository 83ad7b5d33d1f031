// Package progress tracks completion of a document translation run and
// projects it onto a Sink as fraction, status and elapsed/ETA text.
//
// A run is split into (tables + 1) equal segments: one per table, advanced by
// its batches, and a final one advanced by paragraphs.
package progress

import (
	"fmt"
	"time"
)

// Sink receives progress updates. Implementations only render; the tracker
// never reads back from them.
type Sink interface {
	SetProgress(fraction float64)
	SetStatus(text string)
	SetTiming(text string)
}

// Snapshot is the state reported by one update.
type Snapshot struct {
	Fraction  float64
	Elapsed   time.Duration
	Remaining time.Duration
	ETA       time.Time
	Completed bool
}

// Tracker computes progress for a single run. It is not safe for concurrent use.
type Tracker struct {
	sink     Sink
	now      func() time.Time
	start    time.Time
	tables   int
	fraction float64
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker starts tracking a run over a document with the given number of tables
func NewTracker(sink Sink, tables int, opts ...Option) *Tracker {
	if sink == nil {
		sink = Discard
	}
	t := &Tracker{
		sink:   sink,
		now:    time.Now,
		tables: tables,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.start = t.now()
	return t
}

// Fraction returns the last reported fraction
func (t *Tracker) Fraction() float64 {
	return t.fraction
}

// TableBatchDone reports batch (0-based) of totalBatches completed for table (0-based)
func (t *Tracker) TableBatchDone(table, batch, totalBatches int) Snapshot {
	return t.update(TableFraction(table, batch+1, totalBatches, t.tables), false,
		fmt.Sprintf("translating table %d/%d (batch %d/%d)", table+1, t.tables, batch+1, totalBatches))
}

// ParagraphDone reports that done of total paragraphs have been processed
func (t *Tracker) ParagraphDone(done, total int) Snapshot {
	return t.update(ParagraphFraction(done, total, t.tables), false,
		fmt.Sprintf("translating paragraphs (%d/%d)", done, total))
}

// Complete reports the end of the run
func (t *Tracker) Complete() Snapshot {
	return t.update(1.0, true, "translation completed")
}

// Update reports fraction, clamped to [0, 1] and to never fall below the
// previously reported value.
func (t *Tracker) Update(fraction float64, completed bool) Snapshot {
	return t.update(fraction, completed, "")
}

func (t *Tracker) update(fraction float64, completed bool, status string) Snapshot {
	fraction = min(max(fraction, 0, t.fraction), 1)
	t.fraction = fraction

	now := t.now()
	elapsed, remaining, eta := Estimate(t.start, now, fraction)
	snap := Snapshot{
		Fraction:  fraction,
		Elapsed:   elapsed,
		Remaining: remaining,
		ETA:       eta,
		Completed: completed,
	}

	t.sink.SetProgress(fraction)
	if status != "" {
		t.sink.SetStatus(status)
	}
	switch {
	case completed:
		t.sink.SetTiming(fmt.Sprintf("total elapsed: %s", FormatDuration(elapsed)))
	case fraction > 0:
		t.sink.SetTiming(fmt.Sprintf("elapsed: %s | remaining: %s | eta: %s",
			FormatDuration(elapsed), FormatDuration(remaining), eta.Format("15:04:05")))
	}
	return snap
}

// TableFraction is the overall fraction after completedBatches of
// totalBatches in table (0-based) out of tables.
func TableFraction(table, completedBatches, totalBatches, tables int) float64 {
	if totalBatches <= 0 {
		return float64(table+1) / float64(tables+1)
	}
	return (float64(table) + float64(completedBatches)/float64(totalBatches)) / float64(tables+1)
}

// ParagraphFraction is the overall fraction after completed of total paragraphs.
func ParagraphFraction(completed, total, tables int) float64 {
	if total <= 0 {
		return 1.0
	}
	return (float64(tables) + float64(completed)/float64(total)) / float64(tables+1)
}

// Estimate extrapolates remaining time linearly from the fraction done.
// With no progress yet, remaining is zero and eta equals now.
func Estimate(start, now time.Time, fraction float64) (elapsed, remaining time.Duration, eta time.Time) {
	elapsed = now.Sub(start)
	if fraction <= 0 {
		return elapsed, 0, now
	}
	total := time.Duration(float64(elapsed) / fraction)
	remaining = total - elapsed
	return elapsed, remaining, now.Add(remaining)
}

// FormatDuration renders d truncated to whole seconds as H:MM:SS, prefixed
// with the day count when longer than a day.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	clock := fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	switch {
	case days == 1:
		return "1 day, " + clock
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
	return clock
}
