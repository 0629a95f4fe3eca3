package services

import (
	"sync"
	"sync/atomic"
	"time"
)

// RateSnapshot is one fully parsed rate table for a mode. Snapshots
// are immutable once published; a refresh builds a new one and swaps
// it in whole.
type RateSnapshot struct {
	Mode      Mode
	Routes    []RouteRate
	Source    string // sheet URL or "upload:<filename>"
	LoadedAt  time.Time
	Sequence  uint64
}

// RateStore holds the current snapshot per mode. Replacement is
// atomic: readers either see the previous table or the new one, never
// a partial mix. Concurrent refreshes are sequenced -- a load that
// started earlier can not overwrite the result of a later one.
type RateStore struct {
	mu        sync.RWMutex
	snapshots map[Mode]*RateSnapshot
	seq       atomic.Uint64
}

func NewRateStore() *RateStore {
	return &RateStore{snapshots: make(map[Mode]*RateSnapshot)}
}

// Begin reserves a load sequence number. Call it before starting a
// download so a slow superseded fetch loses to the refresh that
// started after it.
func (s *RateStore) Begin() uint64 {
	return s.seq.Add(1)
}

// Replace publishes a snapshot. It reports false, leaving the current
// table untouched, when a newer load already finished.
func (s *RateStore) Replace(snap *RateSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.snapshots[snap.Mode]; ok && current.Sequence >= snap.Sequence {
		return false
	}
	s.snapshots[snap.Mode] = snap
	return true
}

// Get returns the current snapshot for a mode, if one has been loaded.
func (s *RateStore) Get(mode Mode) (*RateSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[mode]
	return snap, ok
}
