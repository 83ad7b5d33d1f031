package progress

import (
	"io"
	"math"
	"time"

	prettyprogress "github.com/jedib0t/go-pretty/v6/progress"
)

const terminalScale = 1000

// TerminalSink renders progress as a single bar on a terminal.
type TerminalSink struct {
	writer  prettyprogress.Writer
	tracker *prettyprogress.Tracker
	status  string
}

// NewTerminalSink starts rendering a progress bar to out. Call Stop when done.
func NewTerminalSink(out io.Writer) *TerminalSink {
	pw := prettyprogress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(prettyprogress.StyleDefault)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Value = false

	tracker := &prettyprogress.Tracker{
		Message: "starting translation",
		Total:   terminalScale,
		Units:   prettyprogress.UnitsDefault,
	}
	pw.AppendTracker(tracker)

	go pw.Render()
	// Stop is a no-op until rendering has begun.
	for i := 0; i < 100 && !pw.IsRenderInProgress(); i++ {
		time.Sleep(time.Millisecond)
	}

	return &TerminalSink{writer: pw, tracker: tracker}
}

func (s *TerminalSink) SetProgress(fraction float64) {
	s.tracker.SetValue(int64(math.Round(fraction * terminalScale)))
}

func (s *TerminalSink) SetStatus(text string) {
	s.status = text
	s.tracker.UpdateMessage(text)
}

func (s *TerminalSink) SetTiming(text string) {
	if s.status == "" {
		s.tracker.UpdateMessage(text)
		return
	}
	s.tracker.UpdateMessage(s.status + " | " + text)
}

// Stop marks the bar done and waits for the final render.
func (s *TerminalSink) Stop() {
	s.tracker.MarkAsDone()
	s.writer.Stop()
	for s.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
