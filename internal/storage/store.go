// Package storage is the durable mapping from a logical domain
// (bank/economy/inventory) to one pretty-printed JSON document on disk.
// Writes are asynchronous and coalesced: a save issued while another is
// in flight only marks a pending flag, and exactly one trailing write
// runs when the in-flight one completes. Disk failures are logged and
// swallowed; the in-memory aggregate stays authoritative.
package storage

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Aggregate is the root document of one domain file. SetLastSave stamps
// the document before each write.
type Aggregate interface {
	SetLastSave(t time.Time)
}

type Store[T Aggregate] struct {
	path string

	mu      sync.Mutex
	state   T
	saving  bool
	pending bool

	inflight sync.WaitGroup

	// writeFile is swapped in tests to observe or fail writes.
	writeFile func(path string, data []byte) error
}

// Open loads the aggregate at path. A missing or unparseable file
// reinitializes to empty() and writes it out synchronously once, so a
// corrupted store self-heals instead of refusing to start.
func Open[T Aggregate](path string, empty func() T) (*Store[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &Store[T]{path: path, writeFile: atomicWrite}

	raw, err := os.ReadFile(path)
	if err == nil {
		state := empty()
		if jerr := json.Unmarshal(raw, state); jerr == nil {
			s.state = state
			return s, nil
		}
		log.Printf("[STORE] %s unreadable, reinitializing: parse error", path)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	s.state = empty()
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return s, nil
}

// View runs fn with the aggregate under the store lock. fn must not
// retain references past its return; copy what it needs out.
func (s *Store[T]) View(fn func(T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Mutate runs fn in the store's critical section and, if fn succeeds,
// schedules a save. A failing fn must leave the aggregate untouched;
// nothing is persisted for it.
func (s *Store[T]) Mutate(fn func(T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.state); err != nil {
		return err
	}
	s.saveLocked()
	return nil
}

// Save schedules an asynchronous write of the current aggregate.
func (s *Store[T]) Save() {
	s.mu.Lock()
	s.saveLocked()
	s.mu.Unlock()
}

func (s *Store[T]) saveLocked() {
	if s.saving {
		s.pending = true
		return
	}
	s.saving = true
	s.state.SetLastSave(time.Now().UTC())
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		s.saving = false
		log.Printf("[STORE] marshal %s: %v", s.path, err)
		return
	}
	s.inflight.Add(1)
	go s.write(data)
}

func (s *Store[T]) write(data []byte) {
	defer s.inflight.Done()
	if err := s.writeFile(s.path, data); err != nil {
		log.Printf("[STORE] write %s: %v", s.path, err)
	}
	s.mu.Lock()
	s.saving = false
	if s.pending {
		s.pending = false
		s.saveLocked()
	}
	s.mu.Unlock()
}

// Flush waits out any in-flight write and persists the current state
// synchronously. Used on startup self-heal and at shutdown.
func (s *Store[T]) Flush() error {
	s.inflight.Wait()
	s.mu.Lock()
	s.state.SetLastSave(time.Now().UTC())
	data, err := json.MarshalIndent(s.state, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.writeFile(s.path, data)
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
