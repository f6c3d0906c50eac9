package task

import (
	"sort"
	"sync"
)

// Set accumulates Records keyed by id. Put is safe for concurrent use so
// scan workers can merge results directly; a duplicate id replaces the
// previous record rather than accumulating.
type Set struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{records: make(map[string]*Record)}
}

// Put inserts or replaces a record by id.
func (s *Set) Put(r *Record) {
	s.mu.Lock()
	s.records[r.ID] = r
	s.mu.Unlock()
}

// Get returns the record with the given id, or nil.
func (s *Set) Get(id string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

// Len returns the number of records in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a snapshot ordered by file path then line number. Priority
// grouping is left to the report layer.
func (s *Set) Records() []*Record {
	s.mu.Lock()
	out := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}
