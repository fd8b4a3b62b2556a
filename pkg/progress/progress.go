// Package progress defines the event contract between the engine and
// whatever presents it.
//
// Matching, resolution and downloads report through a [Sink]. Every event is
// addressed by a stable key: the original input name for searched mods, or
// the display name for dependencies pulled in by resolution. Sinks must be
// safe for concurrent use; events for unrelated keys interleave arbitrarily.
package progress

import (
	"fmt"
	"sync"
)

// Kind identifies the event type.
type Kind int

const (
	// KindFound reports a matched name with its status label and confidence tag.
	KindFound Kind = iota
	// KindUnmatched reports a name no strategy could match.
	KindUnmatched
	// KindProgress reports download progress 0-100 for a key.
	KindProgress
	// KindError reports a short per-item failure message.
	KindError
	// KindStatus is a free-form status line.
	KindStatus
	// KindSummary closes a batch.
	KindSummary
)

var kindNames = [...]string{"found", "unmatched", "progress", "error", "status", "summary"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind    Kind
	Key     string // item key (found, unmatched, progress, error)
	Name    string // display name (found)
	Label   string // status label, e.g. "Available (API) (release)" (found)
	Tag     string // confidence tag: "found", "fallback", "dependency" (found)
	Percent int    // 0-100 (progress)
	Message string // error text, status line or summary
}

// Sink consumes events.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// OrDiscard returns s, or [Discard] when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Multi fans each event out to every sink in order. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return SinkFunc(func(e Event) {
		for _, s := range live {
			s.Emit(e)
		}
	})
}

// Found builds a found event.
func Found(key, name, label, tag string) Event {
	return Event{Kind: KindFound, Key: key, Name: name, Label: label, Tag: tag}
}

// Unmatched builds an unmatched event.
func Unmatched(name string) Event {
	return Event{Kind: KindUnmatched, Key: name}
}

// Progress builds a progress event.
func Progress(key string, percent int) Event {
	return Event{Kind: KindProgress, Key: key, Percent: percent}
}

// Error builds an error event.
func Error(key, message string) Event {
	return Event{Kind: KindError, Key: key, Message: message}
}

// Status builds a status event.
func Status(format string, args ...any) Event {
	return Event{Kind: KindStatus, Message: fmt.Sprintf(format, args...)}
}

// Summary builds a summary event.
func Summary(format string, args ...any) Event {
	return Event{Kind: KindSummary, Message: fmt.Sprintf(format, args...)}
}

// Recorder stores every event it receives. Tests and non-interactive
// output use it to inspect a run after the fact.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit records e.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of all recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfKind returns recorded events of kind k.
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Percents returns the progress values recorded for key, in order.
func (r *Recorder) Percents(key string) []int {
	var out []int
	for _, e := range r.Events() {
		if e.Kind == KindProgress && e.Key == key {
			out = append(out, e.Percent)
		}
	}
	return out
}

// Errors returns error messages by key. The last message wins.
func (r *Recorder) Errors() map[string]string {
	out := make(map[string]string)
	for _, e := range r.Events() {
		if e.Kind == KindError {
			out[e.Key] = e.Message
		}
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

var _ Sink = (*Recorder)(nil)
