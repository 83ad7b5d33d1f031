package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/ownlingo/docxlingo/document"
	"github.com/ownlingo/docxlingo/orchestrator"
	"github.com/ownlingo/docxlingo/translator"
	"github.com/ownlingo/docxlingo/translator/fallback"
)

var _ orchestrator.TextTranslator = (*fallback.Policy)(nil)

// mockTranslator answers with fn and records every text it receives
type mockTranslator struct {
	fn    func(text string) (string, error)
	texts []string
}

func (m *mockTranslator) TranslateText(ctx context.Context, text, targetLanguage string) (string, error) {
	m.texts = append(m.texts, text)
	return m.fn(text)
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		}
		return r
	}, s)
}

// echoSwapCase swaps the case of every separated part and rejoins them
func echoSwapCase(text string) (string, error) {
	parts := strings.Split(text, orchestrator.SeparatorToken)
	for i, p := range parts {
		parts[i] = swapCase(p)
	}
	return strings.Join(parts, orchestrator.SeparatorToken), nil
}

type recordingSink struct {
	fractions []float64
}

func (r *recordingSink) SetProgress(f float64) { r.fractions = append(r.fractions, f) }
func (r *recordingSink) SetStatus(string)      {}
func (r *recordingSink) SetTiming(string)      {}

func koreanCells(n int) []string {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = fmt.Sprintf("셀 Cell%d", i)
	}
	return cells
}

func TestPartition(t *testing.T) {
	units := make([]orchestrator.Unit, 23)

	batches := orchestrator.Partition(units, orchestrator.BatchSize)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}

	for i, want := range []int{10, 10, 3} {
		if len(batches[i]) != want {
			t.Errorf("batch %d: expected %d units, got %d", i, want, len(batches[i]))
		}
	}

	if got := orchestrator.Partition(nil, 10); len(got) != 0 {
		t.Errorf("expected no batches for no units, got %d", len(got))
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		translated string
		n          int
		want       []string
		received   int
	}{
		{
			name:       "exact",
			translated: "a\n---CELL_SEPARATOR---\nb\n---CELL_SEPARATOR---\nc",
			n:          3,
			want:       []string{"a", "b", "c"},
			received:   3,
		},
		{
			name:       "missing delimiter pads",
			translated: "a\n---CELL_SEPARATOR---\nb",
			n:          3,
			want:       []string{"a", "b", ""},
			received:   2,
		},
		{
			name:       "extra delimiter truncates",
			translated: "a---CELL_SEPARATOR---b---CELL_SEPARATOR---c---CELL_SEPARATOR---d",
			n:          2,
			want:       []string{"a", "b"},
			received:   4,
		},
		{
			name:       "single unit",
			translated: "  hello  ",
			n:          1,
			want:       []string{"hello"},
			received:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, received := orchestrator.Reconcile(tt.translated, tt.n)

			if received != tt.received {
				t.Errorf("expected %d received parts, got %d", tt.received, received)
			}

			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != tt.n {
				t.Errorf("Reconcile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslateBatchRoundTrip(t *testing.T) {
	for n := 1; n <= orchestrator.BatchSize; n++ {
		texts := koreanCells(n)
		o := orchestrator.New(&mockTranslator{fn: echoSwapCase})

		result := o.TranslateBatch(context.Background(), texts, translator.English)
		if result.Err != nil || result.Mismatch {
			t.Fatalf("n=%d: unexpected result %+v", n, result)
		}

		if len(result.Parts) != n {
			t.Fatalf("n=%d: expected %d parts, got %d", n, n, len(result.Parts))
		}

		for i, part := range result.Parts {
			if want := swapCase(texts[i]); part != want {
				t.Errorf("n=%d part %d: expected %q, got %q", n, i, want, part)
			}
		}
	}
}

func TestTranslateBatchSendsOneJoinedCall(t *testing.T) {
	mock := &mockTranslator{fn: echoSwapCase}
	o := orchestrator.New(mock)

	o.TranslateBatch(context.Background(), []string{"가", "나", "다"}, translator.English)

	if len(mock.texts) != 1 {
		t.Fatalf("expected one call, got %d", len(mock.texts))
	}

	want := "가\n---CELL_SEPARATOR---\n나\n---CELL_SEPARATOR---\n다"
	if mock.texts[0] != want {
		t.Errorf("expected joined text %q, got %q", want, mock.texts[0])
	}
}

func TestTranslateBatchMissingPart(t *testing.T) {
	texts := koreanCells(4)
	mock := &mockTranslator{fn: func(text string) (string, error) {
		parts := strings.Split(text, orchestrator.SeparatorToken)
		return strings.Join(parts[:len(parts)-1], orchestrator.SeparatorToken), nil
	}}
	o := orchestrator.New(mock)

	result := o.TranslateBatch(context.Background(), texts, translator.English)

	if !result.Mismatch {
		t.Error("expected mismatch to be reported")
	}

	if len(result.Parts) != 4 {
		t.Fatalf("expected 4 parts, got %d", len(result.Parts))
	}

	if result.Parts[3] != "" {
		t.Errorf("expected last part to be empty, got %q", result.Parts[3])
	}

	if result.Parts[0] != texts[0] {
		t.Errorf("expected first part %q, got %q", texts[0], result.Parts[0])
	}
}

func TestTranslateBatchFailure(t *testing.T) {
	mock := &mockTranslator{fn: func(string) (string, error) {
		return "", &fallback.AllProvidersFailedError{TargetLanguage: translator.English}
	}}
	o := orchestrator.New(mock)

	result := o.TranslateBatch(context.Background(), koreanCells(3), translator.English)

	if !errors.Is(result.Err, fallback.ErrAllProvidersFailed) {
		t.Errorf("expected batch error to be reported, got %v", result.Err)
	}

	for i, part := range result.Parts {
		if part != "" {
			t.Errorf("part %d: expected empty, got %q", i, part)
		}
	}
}

func TestTranslateDocument(t *testing.T) {
	doc := document.New()
	doc.AddTable([][]string{
		{"이름", "1,234", "Total"},
		{"  ", "가격", "3."},
	})
	doc.AddParagraph("첫 번째 단락")
	doc.AddParagraph("English only")
	doc.AddParagraph("")
	doc.AddParagraph("두 번째 단락")

	mock := &mockTranslator{fn: func(text string) (string, error) {
		parts := strings.Split(text, orchestrator.SeparatorToken)
		for i, p := range parts {
			parts[i] = "EN(" + strings.TrimSpace(p) + ")"
		}
		return strings.Join(parts, orchestrator.SeparatorToken), nil
	}}
	o := orchestrator.New(mock)

	got, err := o.TranslateDocument(context.Background(), doc, translator.English)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got != document.Document(doc) {
		t.Error("expected the same document handle to be returned")
	}

	cells := doc.CellTexts(0)
	want := [][]string{
		{"EN(이름)", "1,234", "Total"},
		{"  ", "EN(가격)", "3."},
	}
	if fmt.Sprint(cells) != fmt.Sprint(want) {
		t.Errorf("unexpected cells %q, want %q", cells, want)
	}

	paragraphs := doc.ParagraphTexts()
	wantParagraphs := []string{"EN(첫 번째 단락)", "English only", "", "EN(두 번째 단락)"}
	if strings.Join(paragraphs, "|") != strings.Join(wantParagraphs, "|") {
		t.Errorf("unexpected paragraphs %q, want %q", paragraphs, wantParagraphs)
	}

	// One batch for the table, then one call per paragraph.
	if len(mock.texts) != 3 {
		t.Errorf("expected 3 calls, got %d: %q", len(mock.texts), mock.texts)
	}
}

func TestTranslateDocumentTablesBeforeParagraphs(t *testing.T) {
	doc := document.New()
	doc.AddParagraph("단락")
	doc.AddTable([][]string{{"표"}})

	mock := &mockTranslator{fn: func(text string) (string, error) { return "x", nil }}
	orchestrator.New(mock).TranslateDocument(context.Background(), doc, translator.Thai)

	if len(mock.texts) != 2 || mock.texts[0] != "표" || mock.texts[1] != "단락" {
		t.Errorf("expected table first, then paragraph, got %q", mock.texts)
	}
}

func TestTranslateDocumentFailuresAreContained(t *testing.T) {
	doc := document.New()
	doc.AddTable([][]string{koreanCells(12)})
	doc.AddParagraph("실패 단락")
	doc.AddParagraph("성공 단락")

	call := 0
	mock := &mockTranslator{fn: func(text string) (string, error) {
		call++
		switch {
		case call == 1: // first batch
			return "", errors.New("batch down")
		case strings.HasPrefix(text, "실패"):
			return "", &fallback.AllProvidersFailedError{TargetLanguage: translator.Japanese}
		}
		return "ok", nil
	}}
	o := orchestrator.New(mock)

	stats, err := o.Run(context.Background(), doc, translator.Japanese)
	if err != nil {
		t.Fatalf("expected failures to be contained, got %v", err)
	}

	cells := doc.CellTexts(0)[0]
	for i := 0; i < 10; i++ {
		if cells[i] != koreanCells(12)[i] {
			t.Errorf("cell %d: expected original text after failed batch, got %q", i, cells[i])
		}
	}

	// The second batch of two cells received a single part.
	if cells[10] != "ok" || cells[11] != koreanCells(12)[11] {
		t.Errorf("unexpected second batch cells %q", cells[10:])
	}

	paragraphs := doc.ParagraphTexts()
	if paragraphs[0] != "실패 단락" || paragraphs[1] != "ok" {
		t.Errorf("unexpected paragraphs %q", paragraphs)
	}

	if stats.FailedBatches != 1 || stats.MismatchedBatches != 1 || stats.FailedParagraphs != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if stats.TranslatedCells != 1 || stats.TranslatedParagraphs != 1 || stats.Cells != 12 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestTranslateDocumentProgress(t *testing.T) {
	doc := document.New()
	doc.AddTable([][]string{koreanCells(12), koreanCells(11)})
	doc.AddTable([][]string{koreanCells(4)})
	for i := 0; i < 15; i++ {
		doc.AddParagraph(fmt.Sprintf("단락 %d", i))
	}

	sink := &recordingSink{}
	o := orchestrator.New(&mockTranslator{fn: echoSwapCase}, orchestrator.WithSink(sink))

	if _, err := o.TranslateDocument(context.Background(), doc, translator.Indonesian); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// 3 + 1 batches, 15 paragraphs, completion.
	if len(sink.fractions) != 20 {
		t.Fatalf("expected 20 progress updates, got %d", len(sink.fractions))
	}

	for i := 1; i < len(sink.fractions); i++ {
		if sink.fractions[i] < sink.fractions[i-1] {
			t.Fatalf("progress decreased at %d: %v", i, sink.fractions)
		}
	}

	if last := sink.fractions[len(sink.fractions)-1]; last != 1.0 {
		t.Errorf("expected final progress exactly 1.0, got %v", last)
	}
}

func TestTranslateDocumentBatchSizeOption(t *testing.T) {
	doc := document.New()
	doc.AddTable([][]string{koreanCells(5)})

	mock := &mockTranslator{fn: echoSwapCase}
	stats, _ := orchestrator.New(mock, orchestrator.WithBatchSize(2)).Run(context.Background(), doc, translator.English)

	if stats.Batches != 3 || len(mock.texts) != 3 {
		t.Errorf("expected 3 batches of at most 2 cells, got %d batches and %d calls", stats.Batches, len(mock.texts))
	}
}

func TestTranslateDocumentCancelled(t *testing.T) {
	doc := document.New()
	doc.AddTable([][]string{koreanCells(30)})
	doc.AddParagraph("단락")

	ctx, cancel := context.WithCancel(context.Background())
	mock := &mockTranslator{}
	mock.fn = func(text string) (string, error) {
		cancel()
		return echoSwapCase(text)
	}

	got, err := orchestrator.New(mock).TranslateDocument(ctx, doc, translator.English)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if got == nil {
		t.Error("expected the partially translated document to be returned")
	}

	if len(mock.texts) != 1 {
		t.Errorf("expected processing to stop after the first batch, got %d calls", len(mock.texts))
	}
}

func TestNewPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when creating orchestrator without translator")
		}
	}()

	orchestrator.New(nil)
}

func TestTranslateDocumentCancelledDuringLastBatch(t *testing.T) {
	doc := document.New()
	doc.AddTable([][]string{koreanCells(3)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := &mockTranslator{}
	mock.fn = func(text string) (string, error) {
		cancel()
		return echoSwapCase(text)
	}
	sink := &recordingSink{}

	_, err := orchestrator.New(mock, orchestrator.WithSink(sink)).Run(ctx, doc, translator.English)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	for _, f := range sink.fractions {
		if f == 1.0 {
			t.Errorf("expected no completion update after cancellation, got %v", sink.fractions)
		}
	}
}

func TestTranslateDocumentCancelledDuringLastParagraph(t *testing.T) {
	doc := document.New()
	doc.AddParagraph("마지막 단락")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A provider that gets cancelled mid-call leaves the policy nothing to try.
	p := &stubProvider{name: "only", err: errors.New("request aborted")}
	policy := fallback.New(fallback.Slots{Primary: cancelOnCall{stubProvider: p, cancel: cancel}})
	sink := &recordingSink{}

	stats, err := orchestrator.New(policy, orchestrator.WithSink(sink)).Run(ctx, doc, translator.English)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if stats.FailedParagraphs != 0 {
		t.Errorf("expected cancellation not to count as a failed paragraph, got %+v", stats)
	}

	if len(sink.fractions) != 0 {
		t.Errorf("expected no progress updates, got %v", sink.fractions)
	}
}
