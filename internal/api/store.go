package api

import (
	"sort"
	"sync"
)

// PlanStore keeps computed plans in memory, keyed by id.
type PlanStore struct {
	mu    sync.Mutex
	plans map[string]*PlanRecord
}

func NewPlanStore() *PlanStore {
	return &PlanStore{
		plans: make(map[string]*PlanRecord),
	}
}

func (s *PlanStore) Save(rec *PlanRecord) {
	s.mu.Lock()
	s.plans[rec.ID] = rec
	s.mu.Unlock()
}

func (s *PlanStore) Get(id string) (*PlanRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.plans[id]
	return rec, ok
}

func (s *PlanStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[id]; !ok {
		return false
	}
	delete(s.plans, id)
	return true
}

// List returns stored plans, oldest first.
func (s *PlanStore) List() []*PlanRecord {
	s.mu.Lock()
	out := make([]*PlanRecord, 0, len(s.plans))
	for _, rec := range s.plans {
		out = append(out, rec)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *PlanStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.plans)
}
