// Package session holds the results of one search session in memory.
//
// A [Session] maps each original input name to its [match.Result] and
// remembers which names could not be matched, so a later retry can
// resubmit exactly those. Nothing is persisted: a session lives as long as
// the process that created it.
//
// # Usage
//
//	sess := session.New()
//	sess.Reset() // start of every new search
//	sess.Put(result)
//	sess.MarkUnmatched("ThisModDoesNotExist")
//
//	for _, name := range sess.Unmatched() {
//	    // retry
//	}
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/match"
)

// ErrNotFound is returned when a key has no result in the session.
var ErrNotFound = errors.New("not found")

// Session stores match results keyed by original input name. It is safe
// for concurrent use.
type Session struct {
	mu        sync.RWMutex
	id        string
	createdAt time.Time
	results   map[string]*match.Result
	order     []string
	unmatched []string
}

// New creates an empty session.
func New() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset drops every result and starts a new session id.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.NewString()
	s.createdAt = time.Now()
	s.results = make(map[string]*match.Result)
	s.order = nil
	s.unmatched = nil
}

// ID returns the session id.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// CreatedAt returns when the session was last reset.
func (s *Session) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// Put stores r under r.Input, replacing an earlier result for the same
// name. The name is no longer unmatched afterwards.
func (s *Session) Put(r *match.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[r.Input]; !ok {
		s.order = append(s.order, r.Input)
	}
	s.results[r.Input] = r
	s.unmatched = slices.DeleteFunc(s.unmatched, func(n string) bool { return n == r.Input })
}

// MarkUnmatched records name as unmatched unless it already has a result.
func (s *Session) MarkUnmatched(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[name]; ok || slices.Contains(s.unmatched, name) {
		return
	}
	s.unmatched = append(s.unmatched, name)
}

// Result returns the result stored under key.
func (s *Session) Result(key string) (*match.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[key]
	return r, ok
}

// Keys returns the keys of all results in insertion order.
func (s *Session) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Results returns all results in insertion order.
func (s *Session) Results() []*match.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*match.Result, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.results[k])
	}
	return out
}

// Unmatched returns the names no strategy could match, in the order they
// were reported.
func (s *Session) Unmatched() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.unmatched)
}

// Len returns the number of matched names.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// KeyForProject returns the key of the first result (in insertion order)
// whose package has projectID.
func (s *Session) KeyForProject(projectID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.order {
		if s.results[k].Package.ProjectID == projectID {
			return k, true
		}
	}
	return "", false
}

// Packages returns the packages stored under keys, in the order given.
// With no keys it returns every package in insertion order.
func (s *Session) Packages(keys ...string) ([]*deps.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(keys) == 0 {
		keys = s.order
	}
	out := make([]*deps.Package, 0, len(keys))
	for _, k := range keys {
		r, ok := s.results[k]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, k)
		}
		out = append(out, r.Package)
	}
	return out, nil
}
