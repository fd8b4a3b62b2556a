package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	gpprogress "github.com/jedib0t/go-pretty/v6/progress"

	"github.com/helloworldx64/craftpacker/pkg/match"
	"github.com/helloworldx64/craftpacker/pkg/progress"
)

// =============================================================================
// switchSink - one sink for the runner, swapped per phase
// =============================================================================

// switchSink forwards events to the sink of the current command phase. The
// runner captures its sink once; commands swap what sits behind it.
type switchSink struct {
	mu  sync.RWMutex
	cur progress.Sink
}

func newSwitchSink(s progress.Sink) *switchSink {
	return &switchSink{cur: progress.OrDiscard(s)}
}

func (s *switchSink) Emit(e progress.Event) {
	s.mu.RLock()
	cur := s.cur
	s.mu.RUnlock()
	cur.Emit(e)
}

// Set replaces the target and returns the previous one.
func (s *switchSink) Set(next progress.Sink) progress.Sink {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cur
	s.cur = progress.OrDiscard(next)
	return prev
}

// =============================================================================
// lineSink - search and resolve output
// =============================================================================

// lineSink prints one line per event. Status lines go to the spinner when
// one is attached.
type lineSink struct {
	mu      sync.Mutex
	spinner *Spinner
}

func (s *lineSink) Emit(e progress.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case progress.KindFound:
		style := tagStyles[e.Tag]
		printSuccess("%s %s %s  %s", e.Key, StyleDim.Render(iconArrow), e.Name, style.Render(e.Label))
	case progress.KindUnmatched:
		printWarning("%s: not found", e.Key)
	case progress.KindError:
		printError("%s: %s", e.Key, e.Message)
	case progress.KindStatus:
		if s.spinner != nil {
			s.spinner.SetMessage(e.Message)
			return
		}
		printInfo("%s", e.Message)
	case progress.KindSummary:
		printInfo("%s", e.Message)
	}
}

// attach routes status lines to sp until detach is called.
func (s *lineSink) attach(sp *Spinner) {
	s.mu.Lock()
	s.spinner = sp
	s.mu.Unlock()
}

func (s *lineSink) detach() { s.attach(nil) }

// =============================================================================
// transferSink - download progress bars
// =============================================================================

// transferSink renders one go-pretty tracker per download key.
type transferSink struct {
	pw gpprogress.Writer

	mu       sync.Mutex
	trackers map[string]*gpprogress.Tracker
	deps     map[string]bool // keys announced as dependencies
}

func newTransferSink(w io.Writer) *transferSink {
	pw := gpprogress.NewWriter()
	pw.SetAutoStop(false)
	pw.SetTrackerLength(25)
	pw.SetMessageLength(40)
	pw.SetSortBy(gpprogress.SortByNone)
	pw.SetStyle(gpprogress.StyleDefault)
	pw.SetOutputWriter(w)
	pw.SetTrackerPosition(gpprogress.PositionRight)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.Style().Colors = gpprogress.StyleColorsExample
	pw.Style().Options.PercentFormat = "%4.0f%%"
	pw.Style().Visibility.Pinned = true
	pw.Style().Visibility.Value = false

	return &transferSink{
		pw:       pw,
		trackers: make(map[string]*gpprogress.Tracker),
		deps:     make(map[string]bool),
	}
}

// Start renders in the background until Stop. It returns once rendering
// has begun so that an early Stop is not lost.
func (s *transferSink) Start() {
	go s.pw.Render()
	for i := 0; i < 100 && !s.pw.IsRenderInProgress(); i++ {
		time.Sleep(time.Millisecond)
	}
}

// Stop finishes rendering and waits for the final frame.
func (s *transferSink) Stop() {
	s.pw.Stop()
	for s.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

func (s *transferSink) Emit(e progress.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case progress.KindFound:
		if e.Tag == match.TagDependency {
			s.deps[e.Key] = true
		}
	case progress.KindProgress:
		t := s.tracker(e.Key)
		t.SetValue(int64(e.Percent))
		if e.Percent >= 100 {
			t.MarkAsDone()
		}
	case progress.KindError:
		t := s.tracker(e.Key)
		t.UpdateMessage(fmt.Sprintf("%s: %s", s.label(e.Key), e.Message))
		t.MarkAsErrored()
	case progress.KindStatus, progress.KindSummary:
		s.pw.SetPinnedMessages(e.Message)
	}
}

// tracker returns the tracker for key, creating it on first use.
func (s *transferSink) tracker(key string) *gpprogress.Tracker {
	if t, ok := s.trackers[key]; ok {
		return t
	}
	t := &gpprogress.Tracker{Message: s.label(key), Total: 100, Units: gpprogress.UnitsDefault}
	s.trackers[key] = t
	s.pw.AppendTracker(t)
	return t
}

func (s *transferSink) label(key string) string {
	if s.deps[key] {
		return key + " (dependency)"
	}
	return key
}
