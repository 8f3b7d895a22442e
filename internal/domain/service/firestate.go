package service

import (
	"sync"
	"time"
)

// fireState remembers, per rule, the last occurrence key a fixed-time rule
// fired on and the last time a periodic rule fired. It lives in memory only.
//
// The scheduler loop is the only writer; the mutex lets Status read it from
// the HTTP goroutine.
type fireState struct {
	mu          sync.Mutex
	occurrences map[string]string
	firedAt     map[string]time.Time
}

func newFireState() *fireState {
	return &fireState{
		occurrences: make(map[string]string),
		firedAt:     make(map[string]time.Time),
	}
}

func (f *fireState) firedOn(rule, occurrence string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.occurrences[rule] == occurrence
}

func (f *fireState) markOccurrence(rule, occurrence string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.occurrences[rule] = occurrence
	f.firedAt[rule] = at
}

func (f *fireState) lastFired(rule string) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.firedAt[rule]
	return t, ok
}

func (f *fireState) markFiredAt(rule string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.firedAt[rule] = at
}

func (f *fireState) occurrence(rule string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.occurrences[rule]
}
