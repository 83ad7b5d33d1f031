// Package orchestrator walks a document, batches translatable table cells
// into single provider calls and writes translations back in place.
//
// Table cells are joined with CellSeparator, translated as one text and split
// again; position is the only correlation between a cell and its result.
// Paragraphs are translated one call each.
package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/ownlingo/docxlingo/document"
	"github.com/ownlingo/docxlingo/progress"
	"github.com/ownlingo/docxlingo/translator/filter"
	"github.com/rs/zerolog"
)

const (
	// BatchSize is the default number of cells per translation call
	BatchSize = 10

	// CellSeparator joins cell texts inside one batch
	CellSeparator = "\n" + SeparatorToken + "\n"

	// SeparatorToken splits a translated batch back into cells
	SeparatorToken = "---CELL_SEPARATOR---"
)

// TextTranslator translates one text with failover. *fallback.Policy implements it.
type TextTranslator interface {
	TranslateText(ctx context.Context, text, targetLanguage string) (string, error)
}

// Unit is one selected element with its text at selection time
type Unit struct {
	Element document.Element
	Text    string
}

// Stats summarizes one run
type Stats struct {
	Tables               int
	Batches              int
	FailedBatches        int
	MismatchedBatches    int
	Cells                int
	TranslatedCells      int
	Paragraphs           int
	TranslatedParagraphs int
	FailedParagraphs     int
}

// Orchestrator translates documents. An Orchestrator holds no per-run state
// and may be reused for successive documents.
type Orchestrator struct {
	translator TextTranslator
	batchSize  int
	sink       progress.Sink
	logger     zerolog.Logger
	trackerOpt []progress.Option
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithBatchSize overrides BatchSize; values below 1 are ignored
func WithBatchSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithSink sets the progress sink
func WithSink(sink progress.Sink) Option {
	return func(o *Orchestrator) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithTrackerOptions passes options to each run's progress.Tracker
func WithTrackerOptions(opts ...progress.Option) Option {
	return func(o *Orchestrator) {
		o.trackerOpt = append(o.trackerOpt, opts...)
	}
}

// New creates an orchestrator translating through t
func New(t TextTranslator, opts ...Option) *Orchestrator {
	if t == nil {
		panic("translator cannot be nil")
	}

	o := &Orchestrator{
		translator: t,
		batchSize:  BatchSize,
		sink:       progress.Discard,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TranslateDocument translates all tables, then all paragraphs of doc in
// place and returns doc. Failures of single batches or paragraphs leave the
// original text and do not stop the run. The only error is a cancelled
// context, checked between batches and paragraphs; doc is then partially
// translated.
func (o *Orchestrator) TranslateDocument(ctx context.Context, doc document.Document, targetLanguage string) (document.Document, error) {
	_, err := o.Run(ctx, doc, targetLanguage)
	return doc, err
}

// Run is TranslateDocument returning run statistics
func (o *Orchestrator) Run(ctx context.Context, doc document.Document, targetLanguage string) (Stats, error) {
	tables := doc.Tables()
	tracker := progress.NewTracker(o.sink, len(tables), o.trackerOpt...)
	stats := Stats{Tables: len(tables)}

	o.logger.Info().
		Str("target_language", targetLanguage).
		Int("tables", len(tables)).
		Msg("document translation started")

	for i, table := range tables {
		log := o.logger.With().Int("table", i+1).Logger()
		log.Info().Msg("table translation started")

		units := SelectCells(table)
		batches := Partition(units, o.batchSize)
		stats.Cells += len(units)

		for j, batch := range batches {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			result := o.TranslateBatch(ctx, texts(batch), targetLanguage)
			stats.Batches++
			if result.Err != nil {
				stats.FailedBatches++
			}
			if result.Mismatch {
				stats.MismatchedBatches++
			}
			stats.TranslatedCells += Apply(batch, result.Parts)

			tracker.TableBatchDone(i, j, len(batches))
		}
	}

	paragraphs := SelectParagraphs(doc)
	stats.Paragraphs = len(paragraphs)

	for i, unit := range paragraphs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		translated, err := o.translator.TranslateText(ctx, unit.Text, targetLanguage)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return stats, ctxErr
			}
			o.logger.Error().Err(err).Int("paragraph", i+1).Msg("paragraph translation failed")
			stats.FailedParagraphs++
		} else if translated != "" {
			unit.Element.SetText(translated)
			stats.TranslatedParagraphs++
		}

		tracker.ParagraphDone(i+1, len(paragraphs))
	}

	// Cancellation during the last unit ends the loops without a checkpoint.
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	tracker.Complete()
	o.logger.Info().
		Int("batches", stats.Batches).
		Int("failed_batches", stats.FailedBatches).
		Int("translated_cells", stats.TranslatedCells).
		Int("translated_paragraphs", stats.TranslatedParagraphs).
		Int("failed_paragraphs", stats.FailedParagraphs).
		Msg("document translation completed")

	return stats, nil
}

// BatchResult is the reconciled outcome of one batch call. Parts always has
// one entry per input text; "" means leave the original.
type BatchResult struct {
	Parts    []string
	Mismatch bool
	Err      error
}

// TranslateBatch translates texts with a single call and splits the result
// back into len(texts) parts.
func (o *Orchestrator) TranslateBatch(ctx context.Context, texts []string, targetLanguage string) BatchResult {
	if len(texts) == 0 {
		return BatchResult{}
	}

	translated, err := o.translator.TranslateText(ctx, JoinBatch(texts), targetLanguage)
	if err != nil {
		o.logger.Error().Err(err).Int("cells", len(texts)).Msg("batch translation failed")
		return BatchResult{Parts: make([]string, len(texts)), Err: err}
	}

	if translated == "" {
		o.logger.Warn().Int("cells", len(texts)).Msg("batch translation returned empty text")
		return BatchResult{Parts: make([]string, len(texts))}
	}

	parts, got := Reconcile(translated, len(texts))
	mismatch := got != len(texts)
	if mismatch {
		o.logger.Warn().
			Int("expected", len(texts)).
			Int("received", got).
			Msg("translated cell count mismatch")
	}
	return BatchResult{Parts: parts, Mismatch: mismatch}
}

// SelectCells returns, in row-major order, the cells of table worth translating
func SelectCells(table document.Table) []Unit {
	var units []Unit
	for _, row := range table.Rows() {
		for _, cell := range row {
			if u, ok := selectUnit(cell); ok {
				units = append(units, u)
			}
		}
	}
	return units
}

// SelectParagraphs returns the paragraphs of doc worth translating
func SelectParagraphs(doc document.Document) []Unit {
	var units []Unit
	for _, p := range doc.Paragraphs() {
		if u, ok := selectUnit(p); ok {
			units = append(units, u)
		}
	}
	return units
}

func selectUnit(e document.Element) (Unit, bool) {
	text := e.Text()
	if strings.TrimSpace(text) == "" || !filter.IsTranslatable(text) {
		return Unit{}, false
	}
	return Unit{Element: e, Text: text}, true
}

// Partition splits units into consecutive batches of at most size
func Partition(units []Unit, size int) [][]Unit {
	if size < 1 {
		size = 1
	}
	batches := make([][]Unit, 0, (len(units)+size-1)/size)
	for start := 0; start < len(units); start += size {
		end := min(start+size, len(units))
		batches = append(batches, units[start:end])
	}
	return batches
}

// JoinBatch joins cell texts with CellSeparator
func JoinBatch(texts []string) string {
	return strings.Join(texts, CellSeparator)
}

// Reconcile splits a translated batch on SeparatorToken into exactly n
// trimmed parts, padding with "" or dropping extras. It also returns the
// number of parts actually received.
func Reconcile(translated string, n int) ([]string, int) {
	split := strings.Split(translated, SeparatorToken)
	received := len(split)

	parts := make([]string, n)
	for i := 0; i < n && i < len(split); i++ {
		parts[i] = strings.TrimSpace(split[i])
	}
	return parts, received
}

// Apply writes each non-empty part onto the matching unit and returns how many were written
func Apply(units []Unit, parts []string) int {
	applied := 0
	for i, part := range parts {
		if i >= len(units) {
			break
		}
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		units[i].Element.SetText(part)
		applied++
	}
	return applied
}

func texts(units []Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Text
	}
	return out
}
