// Package store owns the ordered collection of gems. It is the single place
// where the image set-once rule is enforced.
package store

import (
	"sync"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
)

// GemStore holds gems in display order (most recent first). All mutations are
// keyed by gem ID and are atomic with respect to readers.
type GemStore struct {
	mu     sync.RWMutex
	gems   []domain.Gem
	index  map[string]int
	loaded bool
	subs   []chan []domain.Gem
}

// New creates an empty store.
func New() *GemStore {
	return &GemStore{index: make(map[string]int)}
}

// Load replaces the whole sequence with gems. A gem whose ID already carried
// an image keeps that image. Duplicate IDs keep their first occurrence.
func (s *GemStore) Load(gems []domain.Gem) {
	next := make([]domain.Gem, 0, len(gems))
	index := make(map[string]int, len(gems))

	s.mu.Lock()
	for _, g := range gems {
		if _, dup := index[g.ID]; dup {
			continue
		}
		if i, ok := s.index[g.ID]; ok && s.gems[i].HasImage() {
			g.Image = s.gems[i].Image
		}
		index[g.ID] = len(next)
		next = append(next, g)
	}
	s.gems = next
	s.index = index
	s.loaded = true
	s.notifyLocked()
	s.mu.Unlock()
}

// Prepend inserts g at the head. If g's ID is already present the old entry
// is replaced, keeping its image when it had one.
func (s *GemStore) Prepend(g domain.Gem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Gem, 0, len(s.gems)+1)
	if i, ok := s.index[g.ID]; ok {
		if s.gems[i].HasImage() {
			g.Image = s.gems[i].Image
		}
		next = append(next, g)
		next = append(next, s.gems[:i]...)
		next = append(next, s.gems[i+1:]...)
	} else {
		next = append(next, g)
		next = append(next, s.gems...)
	}
	s.gems = next
	s.reindexLocked()
	s.notifyLocked()
}

// ApplyPhoto sets the image of gem id if it has none yet. It reports whether
// the store changed. Unknown IDs (for example, dropped by a reload) and empty
// URLs are ignored.
func (s *GemStore) ApplyPhoto(id, url string) bool {
	if url == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok || s.gems[i].HasImage() {
		return false
	}
	s.gems[i].Image = url
	s.notifyLocked()
	return true
}

// Get returns the gem with the given ID.
func (s *GemStore) Get(id string) (domain.Gem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Gem{}, false
	}
	return s.gems[i], true
}

// Snapshot returns a copy of the current sequence.
func (s *GemStore) Snapshot() []domain.Gem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Len returns the number of stored gems.
func (s *GemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gems)
}

// Loaded reports whether at least one list load has completed.
func (s *GemStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Subscribe returns a channel that receives the full sequence after every
// mutation. Slow subscribers only see the latest snapshot.
func (s *GemStore) Subscribe() <-chan []domain.Gem {
	ch := make(chan []domain.Gem, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *GemStore) reindexLocked() {
	s.index = make(map[string]int, len(s.gems))
	for i, g := range s.gems {
		if _, dup := s.index[g.ID]; !dup {
			s.index[g.ID] = i
		}
	}
}

func (s *GemStore) copyLocked() []domain.Gem {
	out := make([]domain.Gem, len(s.gems))
	copy(out, s.gems)
	return out
}

func (s *GemStore) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.copyLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
