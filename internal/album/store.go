package album

import (
	"sync"
)

// Store is the canonical mutable photo collection. Every mutation takes the
// store lock, so concurrent writers (analysis merges, duplicate reconciliation,
// user edits) are serialized with last-write-wins semantics. Derived views must
// always be regenerable from the store alone.
type Store struct {
	mu     sync.RWMutex
	photos []*Photo          // insertion order
	byID   map[string]int    // id -> index in photos
	byName map[string]string // filename -> id
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.photos = nil
	s.byID = make(map[string]int)
	s.byName = make(map[string]string)
}

// Add appends a new photo. Returns false if a photo with the same id already
// exists; ids are immutable and unique for the store's lifetime.
func (s *Store) Add(p Photo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; ok {
		return false
	}
	s.insertLocked(p)
	return true
}

// Upsert replaces the photo with the same id, or appends it if unknown.
// This is the merge primitive used by analysis progress callbacks.
func (s *Store) Upsert(p Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byID[p.ID]; ok {
		old := s.photos[i]
		if old.Filename != p.Filename {
			delete(s.byName, old.Filename)
			s.byName[p.Filename] = p.ID
		}
		cp := p.Clone()
		s.photos[i] = &cp
		return
	}
	s.insertLocked(p)
}

func (s *Store) insertLocked(p Photo) {
	cp := p.Clone()
	s.byID[p.ID] = len(s.photos)
	s.byName[p.Filename] = p.ID
	s.photos = append(s.photos, &cp)
}

// Get returns a copy of the photo with the given id.
func (s *Store) Get(id string) (Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Photo{}, false
	}
	return s.photos[i].Clone(), true
}

// ByFilename returns a copy of the photo with the given filename.
func (s *Store) ByFilename(name string) (Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return Photo{}, false
	}
	return s.photos[s.byID[id]].Clone(), true
}

// List returns copies of all photos in insertion order.
func (s *Store) List() []Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Photo, 0, len(s.photos))
	for _, p := range s.photos {
		out = append(out, p.Clone())
	}
	return out
}

// Len returns the number of photos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// Update applies fn to the photo with the given id under the store lock.
// Returns false if the id is unknown. fn must not retain the pointer.
func (s *Store) Update(id string, fn func(*Photo)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	oldName := s.photos[i].Filename
	fn(s.photos[i])
	if newName := s.photos[i].Filename; newName != oldName {
		delete(s.byName, oldName)
		s.byName[newName] = id
	}
	return true
}

// UpdateByFilename applies fn to the photo with the given filename.
func (s *Store) UpdateByFilename(name string, fn func(*Photo)) bool {
	s.mu.RLock()
	id, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return s.Update(id, fn)
}

// Remove deletes the photo with the given id. Returns false if unknown.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byName, s.photos[i].Filename)
	delete(s.byID, id)
	s.photos = append(s.photos[:i], s.photos[i+1:]...)
	for j := i; j < len(s.photos); j++ {
		s.byID[s.photos[j].ID] = j
	}
	return true
}

// RemoveByFilenames deletes every photo whose filename is in names and returns
// the number of photos removed.
func (s *Store) RemoveByFilenames(names []string) int {
	removed := 0
	for _, name := range names {
		s.mu.RLock()
		id, ok := s.byName[name]
		s.mu.RUnlock()
		if ok && s.Remove(id) {
			removed++
		}
	}
	return removed
}

// Replace swaps the entire collection for the given list. This is the
// authoritative bulk replace performed when an analysis batch completes; it is
// intentionally redundant with the incremental merges so the store converges
// even if individual callback merges were lost or reordered.
func (s *Store) Replace(photos []Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	for _, p := range photos {
		if _, ok := s.byID[p.ID]; ok {
			continue
		}
		s.insertLocked(p)
	}
}

// Reset clears the collection entirely.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}
