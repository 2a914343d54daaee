package store

import (
	"sync"

	"github.com/AngelCh415/adperf/internal/models"
)

const DefaultLimit = 50

// MemoryStore keeps the most recent reports of this process. It is a cache
// for querying, not persistence: everything is gone on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]models.Report
	order   []string          // run ids, oldest first
	seen    map[string]string // upload digest -> run id
	limit   int
}

func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryStore{
		reports: make(map[string]models.Report),
		seen:    make(map[string]string),
		limit:   limit,
	}
}

// Seen returns the run id already stored for digest, if any.
func (s *MemoryStore) Seen(digest string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.seen[digest]
	return id, ok
}

// Put stores r under its run id and remembers digest for it. Once over the
// limit, the oldest report is evicted along with its digests.
func (s *MemoryStore) Put(digest string, r models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.RunID]; !ok {
		s.order = append(s.order, r.RunID)
	}
	s.reports[r.RunID] = r
	if digest != "" {
		s.seen[digest] = r.RunID
	}
	for len(s.order) > s.limit {
		old := s.order[0]
		s.order = s.order[1:]
		delete(s.reports, old)
		for d, id := range s.seen {
			if id == old {
				delete(s.seen, d)
			}
		}
	}
}

func (s *MemoryStore) Get(id string) (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	return r, ok
}

func (s *MemoryStore) Latest() (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return models.Report{}, false
	}
	return s.reports[s.order[len(s.order)-1]], true
}

// List returns summaries, newest first.
func (s *MemoryStore) List() []models.ReportSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ReportSummary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.reports[s.order[i]].Summary())
	}
	return out
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
