// Package memory provides in-process stores for tests, dev runs and the
// default single-node deployment.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
)

type ScheduleStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]schedule.Window
}

func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{byID: make(map[string]schedule.Window)}
}

func (s *ScheduleStore) CreateSchedule(_ context.Context, w schedule.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[w.ID]; ok {
		return apperr.Duplicate("schedule", w.ID)
	}
	s.byID[w.ID] = w
	s.order = append(s.order, w.ID)
	return nil
}

func (s *ScheduleStore) UpdateSchedule(_ context.Context, w schedule.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[w.ID]; !ok {
		return apperr.NotFound("schedule", w.ID)
	}
	s.byID[w.ID] = w
	return nil
}

func (s *ScheduleStore) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return apperr.NotFound("schedule", id)
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func (s *ScheduleStore) GetSchedule(_ context.Context, id string) (schedule.Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.byID[id]
	if !ok {
		return schedule.Window{}, apperr.NotFound("schedule", id)
	}
	return w, nil
}

func (s *ScheduleStore) ListSchedules(_ context.Context) ([]schedule.Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schedule.Window, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}
