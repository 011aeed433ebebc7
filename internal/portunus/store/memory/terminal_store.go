package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

type TerminalStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]types.Terminal
}

func NewTerminalStore() *TerminalStore {
	return &TerminalStore{byID: make(map[string]types.Terminal)}
}

func (s *TerminalStore) UpsertTerminal(_ context.Context, t types.Terminal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[t.ID]
	if !ok {
		s.order = append(s.order, t.ID)
	} else {
		// Liveness is owned by MarkSeen, not by settings edits.
		t.LastSeenAt = old.LastSeenAt
		t.LastEventAt = old.LastEventAt
		if t.PasswordHash == nil {
			t.PasswordHash = old.PasswordHash
		}
		if t.Status == "" {
			t.Status = old.Status
		}
	}
	if t.Status == "" {
		t.Status = types.TerminalDisconnected
	}
	s.byID[t.ID] = t
	return nil
}

func (s *TerminalStore) DeleteTerminal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return apperr.NotFound("terminal", id)
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func (s *TerminalStore) GetTerminal(_ context.Context, id string) (types.Terminal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return types.Terminal{}, apperr.NotFound("terminal", id)
	}
	return t, nil
}

func (s *TerminalStore) ListTerminals(_ context.Context) ([]types.Terminal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Terminal, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *TerminalStore) MarkSeen(_ context.Context, id string, seenAt, eventAt time.Time) error {
	if seenAt.IsZero() {
		seenAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		t = types.Terminal{ID: id, Name: id}
		s.order = append(s.order, id)
	}
	seen := seenAt.UTC()
	t.LastSeenAt = &seen
	t.Status = types.TerminalConnected
	if !eventAt.IsZero() && (t.LastEventAt == nil || eventAt.After(*t.LastEventAt)) {
		ev := eventAt.UTC()
		t.LastEventAt = &ev
	}
	s.byID[id] = t
	return nil
}

func (s *TerminalStore) MarkStaleDisconnected(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.byID {
		if t.Status != types.TerminalConnected {
			continue
		}
		if t.LastSeenAt == nil || t.LastSeenAt.Before(cutoff) {
			t.Status = types.TerminalDisconnected
			s.byID[id] = t
			n++
		}
	}
	return n, nil
}
