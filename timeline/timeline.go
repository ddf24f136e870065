// Package timeline collects events from every worker into one log.
//
// Workers append concurrently while the run is live. Ordering across
// workers is only established once, by Finalize, after all of them have
// stopped.
package timeline

import (
	"errors"
	"sort"
	"sync"

	"go-threadmusic/debug"
	"go-threadmusic/midi"
)

// ErrFinalized is returned by a second Finalize
var ErrFinalized = errors.New("timeline already finalized")

// Sink is the shared, append-only event log
type Sink struct {
	mu        sync.Mutex
	events    []midi.Event
	seq       uint64
	finalized bool
	dropped   int
}

// New returns an empty sink
func New() *Sink {
	return &Sink{events: make([]midi.Event, 0, 1024)}
}

// Append records one event. Safe for concurrent use. Events appended after
// Finalize are dropped.
func (s *Sink) Append(ev midi.Event) {
	s.mu.Lock()
	if s.finalized {
		s.dropped++
		s.mu.Unlock()
		debug.Log("timeline", "dropped late event %s", ev)
		return
	}
	ev.Seq = s.seq
	s.seq++
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

// Len returns the number of recorded events
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Dropped returns how many events arrived after Finalize
func (s *Sink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Finalize sorts events by tick, keeping insertion order for equal ticks,
// and hands them off. It must run after every writer has stopped and may
// only be called once.
func (s *Sink) Finalize() ([]midi.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, ErrFinalized
	}
	s.finalized = true

	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].Tick < s.events[j].Tick
	})

	out := s.events
	s.events = nil
	debug.Log("timeline", "finalized %d events", len(out))
	return out, nil
}
