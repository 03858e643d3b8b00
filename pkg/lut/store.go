package lut

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Store owns the working table. It starts out as a copy of the identity
// table and is safe for concurrent use.
type Store struct {
	mu      *sync.RWMutex
	working Table
}

// NewStore returns a Store whose working table is the identity table.
func NewStore() *Store {
	return &Store{
		mu:      &sync.RWMutex{},
		working: linear,
	}
}

// Reset discards all edits by copying the identity table over the working
// table.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.working = linear
	logrus.Trace("working lut reset to linear")
}

// UpdateEntry replaces channel c of entry index with value, leaving the other
// two channels alone. It does nothing if value does not fit in a channel or
// c is not a recognized channel.
func (s *Store) UpdateEntry(value uint, c Channel, index uint8) {
	if value > MaxValue || !c.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.working[index] = withChannel(s.working[index], c, uint8(value))
	logrus.WithFields(logrus.Fields{
		"index":   index,
		"channel": c,
		"value":   value,
		"entry":   s.working[index],
	}).Trace("working lut entry updated")
}

// Entry returns the working entry at index.
func (s *Store) Entry(index uint8) uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.working[index]
}

// Snapshot returns a copy of the working table.
func (s *Store) Snapshot() Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.working
}
