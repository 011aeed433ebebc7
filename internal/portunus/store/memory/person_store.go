package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

type PersonStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]types.Person
	byDoc map[string]string // document id -> person id
}

func NewPersonStore() *PersonStore {
	return &PersonStore{
		byID:  make(map[string]types.Person),
		byDoc: make(map[string]string),
	}
}

func (s *PersonStore) CreatePerson(_ context.Context, p types.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; ok {
		return apperr.Duplicate("person", p.ID)
	}
	if _, ok := s.byDoc[p.DocumentID]; ok {
		return apperr.Duplicate("document", p.DocumentID)
	}
	s.byID[p.ID] = p.Clone()
	s.byDoc[p.DocumentID] = p.ID
	s.order = append(s.order, p.ID)
	return nil
}

func (s *PersonStore) UpdatePerson(_ context.Context, p types.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[p.ID]
	if !ok {
		return apperr.NotFound("person", p.ID)
	}
	if owner, ok := s.byDoc[p.DocumentID]; ok && owner != p.ID {
		return apperr.Duplicate("document", p.DocumentID)
	}
	delete(s.byDoc, old.DocumentID)
	s.byDoc[p.DocumentID] = p.ID
	s.byID[p.ID] = p.Clone()
	return nil
}

func (s *PersonStore) DeletePerson(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return apperr.NotFound("person", id)
	}
	delete(s.byID, id)
	delete(s.byDoc, p.DocumentID)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func (s *PersonStore) GetPerson(_ context.Context, id string) (types.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return types.Person{}, apperr.NotFound("person", id)
	}
	return p.Clone(), nil
}

func (s *PersonStore) GetPersonByDocument(_ context.Context, documentID string) (types.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byDoc[documentID]
	if !ok {
		return types.Person{}, apperr.NotFound("document", documentID)
	}
	return s.byID[id].Clone(), nil
}

func (s *PersonStore) ListPeople(_ context.Context) ([]types.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Person, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out, nil
}

func (s *PersonStore) PeopleWithSchedule(_ context.Context, scheduleID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, id := range s.order {
		if s.byID[id].ScheduleID == scheduleID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *PersonStore) ClearSchedule(_ context.Context, scheduleID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, p := range s.byID {
		if p.ScheduleID == scheduleID {
			p.ScheduleID = ""
			s.byID[id] = p
			n++
		}
	}
	return n, nil
}
